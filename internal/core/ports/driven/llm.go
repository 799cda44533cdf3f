package driven

import "context"

// LLMService provides language model completions.
type LLMService interface {
	// Complete runs one system + user prompt exchange and returns the text.
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompleteOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompleteOptions configures a completion.
type CompleteOptions struct {
	// MaxTokens limits the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// JSON asks the provider for a JSON object response.
	JSON bool
}
