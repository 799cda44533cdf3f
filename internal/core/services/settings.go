package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMVisionModel    = "llm.vision_model"
	keyLLMTitleModel     = "llm.title_model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyChunkMaxTokens    = "chunking.max_tokens"
	keyChunkOverlap      = "chunking.overlap_tokens"
	keyChunkEncoding     = "chunking.encoding"
	keyIndexWorkers      = "indexing.workers"
	keyIndexTitles       = "indexing.titles"
	keyRetrievalTopK     = "retrieval.top_k"
	keyRetrievalWorkers  = "retrieval.concurrency"
	keyRetrievalTimeout  = "retrieval.timeout"
	keyMaxAttempts       = "resilience.max_attempts"
	keyBaseDelay         = "resilience.base_delay"
	keyCallTimeout       = "resilience.call_timeout"
	keyBreakerThreshold  = "resilience.breaker_threshold"
	keyBreakerCooldown   = "resilience.breaker_cooldown"
	keyRequestsPerSecond = "resilience.requests_per_sec"
	keyBurst             = "resilience.burst"
	keyStorageBackend    = "storage.backend"
	keyStorageDataDir    = "storage.data_dir"
	keyStorageDSN        = "storage.dsn"
	keyDedupPath         = "dedup.path"
	keyDedupRedisURL     = "dedup.redis_url"
	keyDedupClaimTTL     = "dedup.claim_ttl"
	keyServerAddr        = "server.addr"
	keyServerAuthToken   = "server.auth_token"
	keyLogFile           = "logging.file"
	keyLogVerbose        = "logging.verbose"
)

// envPrefix prefixes the generated environment variable of every key,
// e.g. DOCQA_LLM_MODEL for llm.model.
const envPrefix = "DOCQA_"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindFloat
	kindDuration
)

// settingKinds lists every settable key with its value type.
var settingKinds = map[string]valueKind{
	keyEmbedProvider:     kindString,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyEmbedDimensions:   kindInt,
	keyLLMProvider:       kindString,
	keyLLMModel:          kindString,
	keyLLMVisionModel:    kindString,
	keyLLMTitleModel:     kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyChunkMaxTokens:    kindInt,
	keyChunkOverlap:      kindInt,
	keyChunkEncoding:     kindString,
	keyIndexWorkers:      kindInt,
	keyIndexTitles:       kindBool,
	keyRetrievalTopK:     kindInt,
	keyRetrievalWorkers:  kindInt,
	keyRetrievalTimeout:  kindDuration,
	keyMaxAttempts:       kindInt,
	keyBaseDelay:         kindDuration,
	keyCallTimeout:       kindDuration,
	keyBreakerThreshold:  kindInt,
	keyBreakerCooldown:   kindDuration,
	keyRequestsPerSecond: kindFloat,
	keyBurst:             kindInt,
	keyStorageBackend:    kindString,
	keyStorageDataDir:    kindString,
	keyStorageDSN:        kindString,
	keyDedupPath:         kindString,
	keyDedupRedisURL:     kindString,
	keyDedupClaimTTL:     kindDuration,
	keyServerAddr:        kindString,
	keyServerAuthToken:   kindString,
	keyLogFile:           kindString,
	keyLogVerbose:        kindBool,
}

// envAliases are conventional variables honoured after the DOCQA_ ones.
//
//nolint:gosec // G101: These are environment variable names.
var envAliases = map[string][]string{
	keyEmbedAPIKey:     {"GEMINI_API_KEY"},
	keyLLMAPIKey:       {"GEMINI_API_KEY"},
	keyServerAuthToken: {"AUTHORIZATION_TOKEN"},
	keyStorageDSN:      {"DATABASE_URL"},
	keyDedupRedisURL:   {"REDIS_URL"},
}

// SettingsService manages application settings.
//
// Values resolve in order: environment, config file, defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:    s.getString(keyEmbedBaseURL, d.Embedding.BaseURL),
			APIKey:     s.getString(keyEmbedAPIKey, ""),
			Dimensions: s.getInt(keyEmbedDimensions, d.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			VisionModel: s.getString(keyLLMVisionModel, d.LLM.VisionModel),
			TitleModel:  s.getString(keyLLMTitleModel, d.LLM.TitleModel),
			BaseURL:     s.getString(keyLLMBaseURL, d.LLM.BaseURL),
			APIKey:      s.getString(keyLLMAPIKey, ""),
		},
		Chunking: domain.ChunkingSettings{
			MaxTokens:     s.getInt(keyChunkMaxTokens, d.Chunking.MaxTokens),
			OverlapTokens: s.getInt(keyChunkOverlap, d.Chunking.OverlapTokens),
			Encoding:      s.getString(keyChunkEncoding, d.Chunking.Encoding),
		},
		Indexing: domain.IndexingSettings{
			Workers: s.getInt(keyIndexWorkers, d.Indexing.Workers),
			Titles:  s.getBool(keyIndexTitles, d.Indexing.Titles),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:        s.getInt(keyRetrievalTopK, d.Retrieval.TopK),
			Concurrency: s.getInt(keyRetrievalWorkers, d.Retrieval.Concurrency),
			Timeout:     s.getDuration(keyRetrievalTimeout, d.Retrieval.Timeout),
		},
		Resilience: domain.ResilienceSettings{
			MaxAttempts:      s.getInt(keyMaxAttempts, d.Resilience.MaxAttempts),
			BaseDelay:        s.getDuration(keyBaseDelay, d.Resilience.BaseDelay),
			CallTimeout:      s.getDuration(keyCallTimeout, d.Resilience.CallTimeout),
			BreakerThreshold: s.getInt(keyBreakerThreshold, d.Resilience.BreakerThreshold),
			BreakerCooldown:  s.getDuration(keyBreakerCooldown, d.Resilience.BreakerCooldown),
			RequestsPerSec:   s.getFloat(keyRequestsPerSecond, d.Resilience.RequestsPerSec),
			Burst:            s.getInt(keyBurst, d.Resilience.Burst),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(d.Storage.Backend),
			DataDir: s.getString(keyStorageDataDir, s.defaultDataDir()),
			DSN:     s.getString(keyStorageDSN, d.Storage.DSN),
		},
		Dedup: domain.DedupSettings{
			Path:     s.getString(keyDedupPath, ""),
			RedisURL: s.getString(keyDedupRedisURL, d.Dedup.RedisURL),
			ClaimTTL: s.getDuration(keyDedupClaimTTL, d.Dedup.ClaimTTL),
		},
		Server: domain.ServerSettings{
			Addr:      s.getString(keyServerAddr, d.Server.Addr),
			AuthToken: s.getString(keyServerAuthToken, ""),
		},
		Logging: domain.LoggingSettings{
			File:    s.getString(keyLogFile, d.Logging.File),
			Verbose: s.getBool(keyLogVerbose, d.Logging.Verbose),
		},
	}

	if settings.Dedup.Path == "" {
		settings.Dedup.Path = filepath.Join(settings.Storage.DataDir, "dedup")
	}

	// Ollama needs an address; cloud providers fall back to their default.
	if settings.Embedding.Provider.IsLocal() && !s.isSet(keyEmbedBaseURL) {
		settings.Embedding.BaseURL = "http://localhost:11434"
	}
	if settings.LLM.Provider.IsLocal() && !s.isSet(keyLLMBaseURL) {
		settings.LLM.BaseURL = "http://localhost:11434"
	}

	return settings, nil
}

// Set validates and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
		if key == keyEmbedProvider && domain.AIProvider(value) == domain.AIProviderAnthropic {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, value)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid storage backend %q", domain.ErrInvalidInput, value)
		}
	case keyEmbedModel:
		// Track the native dimension of known models unless pinned.
		if dims, ok := domain.EmbeddingDimensions()[value]; ok && !s.isStored(keyEmbedDimensions) {
			if err := s.configStore.Set(keyEmbedDimensions, dims); err != nil {
				return fmt.Errorf("save %s: %w", keyEmbedDimensions, err)
			}
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for key := range settingKinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EnvVar returns the generated environment variable name for key.
func EnvVar(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// EnvVar returns the generated environment variable name for key.
func (s *SettingsService) EnvVar(key string) string {
	return EnvVar(key)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, errors.New("must not be negative")
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, err
		}
		return b, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

// raw returns the environment or stored value of key as a string.
func (s *SettingsService) raw(key string) (string, bool) {
	if val, ok := s.lookupEnv(EnvVar(key)); ok && val != "" {
		return val, true
	}
	for _, alias := range envAliases[key] {
		if val, ok := s.lookupEnv(alias); ok && val != "" {
			return val, true
		}
	}
	if val, ok := s.configStore.Get(key); ok {
		str := fmt.Sprint(val)
		if str != "" {
			return str, true
		}
	}
	return "", false
}

func (s *SettingsService) isSet(key string) bool {
	_, ok := s.raw(key)
	return ok
}

func (s *SettingsService) isStored(key string) bool {
	_, ok := s.configStore.Get(key)
	return ok
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.raw(key); ok {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return defaultVal
	}
	return f
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.getString(keyStorageBackend, ""))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// defaultDataDir places data next to the config file.
func (s *SettingsService) defaultDataDir() string {
	if path := s.configStore.Path(); path != "" {
		return filepath.Join(filepath.Dir(path), "data")
	}
	return "data"
}
