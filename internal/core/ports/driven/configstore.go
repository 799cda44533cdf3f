package driven

// ConfigStore persists user settings as flat dot-path keys ("llm.model").
// Values keep the type they were stored with; TOML integers come back as int64.
type ConfigStore interface {
	// Get returns the stored value of key and whether it is set.
	Get(key string) (any, bool)

	// Set stores value under key. Persistent stores write through
	// before returning.
	Set(key string, value any) error

	// Path locates the backing file. Settings place the data directory
	// next to it.
	Path() string
}
