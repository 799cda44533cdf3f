// Package langchain provides LLM and image description adapters backed by
// langchaingo, used for the Anthropic and Ollama providers.
package langchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.ImageDescriber   = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-3-5-sonnet-latest"
	DefaultOllamaModel    = "llama3.2"
	DefaultOllamaURL      = "http://localhost:11434"
)

// Config holds configuration for a langchaingo-backed service.
type Config struct {
	// Provider selects the backend: anthropic or ollama.
	Provider domain.AIProvider

	// APIKey is required for anthropic.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Model is the chat model.
	Model string
}

// LLMService adapts a langchaingo model to the LLM and image ports.
type LLMService struct {
	model       llms.Model
	modelName   string
	promptStore driven.PromptStore
}

// New creates a service for the configured provider.
func New(cfg Config) (*LLMService, error) {
	switch cfg.Provider {
	case domain.AIProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic: API key is required")
		}
		if cfg.Model == "" {
			cfg.Model = DefaultAnthropicModel
		}
		opts := []anthropic.Option{
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("anthropic: %w", err)
		}
		return NewWithModel(model, cfg.Model), nil

	case domain.AIProviderOllama:
		if cfg.Model == "" {
			cfg.Model = DefaultOllamaModel
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOllamaURL
		}
		model, err := ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("ollama: %w", err)
		}
		return NewWithModel(model, cfg.Model), nil

	default:
		return nil, fmt.Errorf("langchain: unsupported provider %q", cfg.Provider)
	}
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, name string) *LLMService {
	return &LLMService{model: model, modelName: name}
}

// Complete runs one system + user exchange.
func (s *LLMService) Complete(ctx context.Context, systemPrompt, userPrompt string, opts driven.CompleteOptions) (string, error) {
	var content []llms.MessageContent
	if systemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))

	var callOpts []llms.CallOption
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	}
	if opts.JSON {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	return s.generate(ctx, content, callOpts...)
}

// defaultImagePrompt is the fallback prompt when no PromptStore is configured.
const defaultImagePrompt = `Describe this image for a document search index.
Transcribe any visible text exactly, then summarise charts, tables and diagrams.
Return plain text only.`

// Describe sends the image as a binary content part.
func (s *LLMService) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	content := []llms.MessageContent{{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.TextPart(s.loadPrompt(driven.PromptImageDescribe, defaultImagePrompt)),
			llms.BinaryPart(mimeType, image),
		},
	}}

	text, err := s.generate(ctx, content)
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (s *LLMService) generate(ctx context.Context, content []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	resp, err := s.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.modelName, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned", s.modelName)
	}
	return resp.Choices[0].Content, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *LLMService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.modelName
}

// Ping sends a one-token completion.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Complete(ctx, "", "ping", driven.CompleteOptions{MaxTokens: 1})
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
