package driving

import "github.com/custodia-labs/docqa-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults and
	// environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single dot-path key (e.g. "llm.model").
	Set(key, value string) error

	// Keys returns every settable key.
	Keys() []string

	// EnvVar returns the environment variable that overrides key.
	EnvVar(key string) string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
