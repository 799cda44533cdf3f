// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/embedding/cached"
	ollamaembed "github.com/custodia-labs/docqa-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/llm/langchain"
	openaillm "github.com/custodia-labs/docqa-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
	"github.com/custodia-labs/docqa-cli/internal/ratelimit"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// llmService is an LLM that can also describe images and load prompts.
// Both the OpenAI-compatible and langchaingo adapters satisfy it.
type llmService interface {
	driven.LLMService
	driven.ImageDescriber
	driven.PromptStoreAware
}

// InitResult contains the AI services built from settings.
type InitResult struct {
	// EmbeddingService is the provider client behind a query cache.
	// Callers add retries and the circuit breaker on top.
	EmbeddingService driven.EmbeddingService

	// LLMService answers questions.
	LLMService driven.LLMService

	// TitleService derives chunk titles. It is LLMService unless a
	// separate title model is configured.
	TitleService driven.LLMService

	// ImageDescriber is rate limited on the vision limiter.
	ImageDescriber driven.ImageDescriber

	// Limiters are built from the resilience settings.
	EmbeddingLimiter *ratelimit.Limiter
	LLMLimiter       *ratelimit.Limiter

	Warnings []string // Non-fatal issues.

	closers []func() error
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			logger.Debug("ai: close: %v", err)
		}
	}
	r.closers = nil
}

// Build creates every AI service the pipeline needs. A missing embedding
// provider is an error; a missing LLM is a warning because ingestion of
// non-image documents works without it.
func Build(settings *domain.AppSettings, prompts driven.PromptStore) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	result := &InitResult{
		EmbeddingLimiter: limiterFor(ratelimit.CollaboratorEmbedding, settings.Resilience),
		LLMLimiter:       ratelimit.New(ratelimit.CollaboratorLLM),
	}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedding == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured, set %s",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider, apiKeyHint(settings.Embedding.Provider))
	}
	cache := cached.New(embedding, cached.DefaultTTL)
	result.EmbeddingService = cache
	result.closers = append(result.closers, cache.Close)

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LLM provider %q is not configured, answers and image description are disabled", settings.LLM.Provider))
		return result, nil
	}
	llm.SetPromptStore(prompts)
	result.LLMService = llm
	result.TitleService = llm
	result.closers = append(result.closers, llm.Close)

	if title := settings.LLM.TitleModel; title != "" && title != settings.LLM.Model {
		titleSettings := settings.LLM
		titleSettings.Model = title
		titleLLM, err := CreateLLMService(&titleSettings)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("title model %q unavailable: %v", title, err))
		} else {
			result.TitleService = titleLLM
			result.closers = append(result.closers, titleLLM.Close)
		}
	}

	var describer driven.ImageDescriber = llm
	if vision := settings.LLM.VisionModel; vision != "" && vision != settings.LLM.Model && settings.LLM.Provider != domain.AIProviderOpenAI {
		// The OpenAI-compatible adapter carries its own vision model.
		visionSettings := settings.LLM
		visionSettings.Model = vision
		visionLLM, err := CreateLLMService(&visionSettings)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("vision model %q unavailable: %v", vision, err))
		} else {
			visionLLM.SetPromptStore(prompts)
			describer = visionLLM
			result.closers = append(result.closers, visionLLM.Close)
		}
	}
	result.ImageDescriber = NewLimitedDescriber(describer, ratelimit.New(ratelimit.CollaboratorVision))

	return result, nil
}

// limiterFor builds a limiter from resilience settings, falling back to
// the collaborator default when no rate is configured.
func limiterFor(c ratelimit.Collaborator, cfg domain.ResilienceSettings) *ratelimit.Limiter {
	if cfg.RequestsPerSec <= 0 {
		return ratelimit.New(c)
	}
	return ratelimit.NewWithConfig(ratelimit.Config{
		RequestsPerSecond: cfg.RequestsPerSec,
		BurstSize:         cfg.Burst,
		Collaborator:      c,
	})
}

// apiKeyHint names the variable that configures a provider.
func apiKeyHint(provider domain.AIProvider) string {
	if provider.RequiresAPIKey() {
		return "GEMINI_API_KEY or 'docqa settings set embedding.api_key'"
	}
	return "'docqa settings set embedding.provider'"
}

// LimitedDescriber throttles image descriptions on a shared limiter.
type LimitedDescriber struct {
	inner   driven.ImageDescriber
	limiter *ratelimit.Limiter
}

// NewLimitedDescriber wraps a describer with a rate limiter.
func NewLimitedDescriber(inner driven.ImageDescriber, limiter *ratelimit.Limiter) *LimitedDescriber {
	return &LimitedDescriber{inner: inner, limiter: limiter}
}

// Describe waits for the limiter, then describes the image. A rate limit
// reported by the provider pauses every caller on the limiter.
func (d *LimitedDescriber) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}
	text, err := d.inner.Describe(ctx, image, mimeType)
	if errors.Is(err, domain.ErrRateLimited) {
		d.limiter.Backoff(0)
	}
	return text, err
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	return NewConfigValidator().ValidateEmbedding(settings)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	return NewConfigValidator().ValidateLLM(settings)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (llmService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			VisionModel: settings.VisionModel,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic, domain.AIProviderOllama:
		svc, err := langchain.New(langchain.Config{
			Provider: settings.Provider,
			APIKey:   settings.APIKey,
			BaseURL:  settings.BaseURL,
			Model:    settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions <= 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions <= 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI-compatible embedding service.
// The configured dimensions are requested from the provider.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := settings.Dimensions
	if dimensions <= 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
