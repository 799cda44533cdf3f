package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible API, including the Gemini
	// OpenAI endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects the vector store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite keeps chunks and vectors in a local SQLite file.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePGVector keeps chunks in PostgreSQL with the pgvector extension.
	StoragePGVector StorageBackend = "pgvector"

	// StorageMemory keeps chunks in process memory.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StoragePGVector, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI-compatible providers).
	APIKey string

	// Dimensions is the fixed vector size D for this deployment.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name used for answers.
	Model string

	// VisionModel describes images. Empty means Model.
	VisionModel string

	// TitleModel derives chunk titles. Empty means Model.
	TitleModel string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls the token chunker.
type ChunkingSettings struct {
	// MaxTokens is the window size in tokens.
	MaxTokens int

	// OverlapTokens is carried from one chunk into the next.
	OverlapTokens int

	// Encoding is the BPE encoding name.
	Encoding string
}

// IndexingSettings controls the indexing pipeline.
type IndexingSettings struct {
	// Workers bounds concurrent embed and persist tasks.
	Workers int

	// Titles enables LLM-derived chunk titles and summaries.
	Titles bool
}

// RetrievalSettings controls the answer fan-out.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// Concurrency bounds questions in flight.
	Concurrency int

	// Timeout bounds a single question end to end.
	Timeout time.Duration
}

// ResilienceSettings controls retries, the circuit breaker and rate limits
// for external AI calls.
type ResilienceSettings struct {
	MaxAttempts      int
	BaseDelay        time.Duration
	CallTimeout      time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
	RequestsPerSec   float64
	Burst            int
}

// StorageSettings selects and locates the vector store.
type StorageSettings struct {
	// Backend is the vector store implementation.
	Backend StorageBackend

	// DataDir holds local databases.
	DataDir string

	// DSN is the PostgreSQL connection string for pgvector.
	DSN string
}

// DedupSettings locates the dedup ledger and optional cross-process claim.
type DedupSettings struct {
	// Path is the badger directory. Empty means <data dir>/dedup.
	Path string

	// RedisURL enables the cross-process ingest claim when set.
	RedisURL string

	// ClaimTTL bounds how long a claim is held.
	ClaimTTL time.Duration
}

// ServerSettings holds the HTTP batch endpoint configuration.
type ServerSettings struct {
	Addr      string
	AuthToken string
}

// LoggingSettings holds logger configuration.
type LoggingSettings struct {
	// File enables a rotating JSON log file when set.
	File string

	// Verbose enables debug output on the console.
	Verbose bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Chunking   ChunkingSettings
	Indexing   IndexingSettings
	Retrieval  RetrievalSettings
	Resilience ResilienceSettings
	Storage    StorageSettings
	Dedup      DedupSettings
	Server     ServerSettings
	Logging    LoggingSettings
}

// Gemini OpenAI-compatible endpoint used by default for both embeddings
// and completions.
const GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// DefaultAppSettings returns settings with sensible defaults.
// API keys are never defaulted.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOpenAI,
			Model:      "gemini-embedding-001",
			BaseURL:    GeminiOpenAIBaseURL,
			Dimensions: 1536,
		},
		LLM: LLMSettings{
			Provider:   AIProviderOpenAI,
			Model:      "gemini-2.5-flash",
			TitleModel: "gemini-2.0-flash",
			BaseURL:    GeminiOpenAIBaseURL,
		},
		Chunking: ChunkingSettings{
			MaxTokens:     1500,
			OverlapTokens: 50,
			Encoding:      "cl100k_base",
		},
		Indexing: IndexingSettings{
			Workers: 8,
		},
		Retrieval: RetrievalSettings{
			TopK:        3,
			Concurrency: 4,
			Timeout:     60 * time.Second,
		},
		Resilience: ResilienceSettings{
			MaxAttempts:      3,
			BaseDelay:        500 * time.Millisecond,
			CallTimeout:      30 * time.Second,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
			RequestsPerSec:   5,
			Burst:            5,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Dedup: DedupSettings{
			ClaimTTL: 10 * time.Minute,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "gemini-embedding-001",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gemini-2.5-flash",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the native vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI-compatible models
		"gemini-embedding-001":   3072,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
