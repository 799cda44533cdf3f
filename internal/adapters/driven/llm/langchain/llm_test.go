package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// fakeModel records the last request and returns a canned reply.
type fakeModel struct {
	reply    string
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	f.options = llms.CallOptions{}
	for _, opt := range options {
		opt(&f.options)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantModel string
		wantErr   bool
	}{
		{name: "anthropic without key", cfg: Config{Provider: domain.AIProviderAnthropic}, wantErr: true},
		{name: "anthropic", cfg: Config{Provider: domain.AIProviderAnthropic, APIKey: "k"}, wantModel: DefaultAnthropicModel},
		{name: "ollama", cfg: Config{Provider: domain.AIProviderOllama, Model: "qwen2.5"}, wantModel: "qwen2.5"},
		{name: "unsupported", cfg: Config{Provider: domain.AIProviderOpenAI}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestComplete(t *testing.T) {
	model := &fakeModel{reply: "Grace period is 30 days."}
	svc := NewWithModel(model, "fake")

	answer, err := svc.Complete(context.Background(), "system", "question", driven.CompleteOptions{
		MaxTokens:   128,
		Temperature: 0.2,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace period is 30 days.", answer)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, 128, model.options.MaxTokens)
	assert.InDelta(t, 0.2, model.options.Temperature, 1e-9)
	assert.True(t, model.options.JSONMode)
}

func TestComplete_Error(t *testing.T) {
	cause := errors.New("overloaded")
	svc := NewWithModel(&fakeModel{err: cause}, "fake")

	_, err := svc.Complete(context.Background(), "", "q", driven.CompleteOptions{})
	assert.ErrorIs(t, err, cause)
}

func TestDescribe(t *testing.T) {
	model := &fakeModel{reply: " A scanned discharge summary. "}
	svc := NewWithModel(model, "fake")

	text, err := svc.Describe(context.Background(), []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "A scanned discharge summary.", text)

	require.Len(t, model.messages, 1)
	parts := model.messages[0].Parts
	require.Len(t, parts, 2)
	binary, ok := parts[1].(llms.BinaryContent)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", binary.MIMEType)
	assert.Equal(t, []byte("jpeg"), binary.Data)
}

func TestDescribe_EmptyImage(t *testing.T) {
	_, err := NewWithModel(&fakeModel{}, "fake").Describe(context.Background(), nil, "image/png")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPing(t *testing.T) {
	model := &fakeModel{reply: "pong"}
	require.NoError(t, NewWithModel(model, "fake").Ping(context.Background()))
	assert.Equal(t, 1, model.options.MaxTokens)
}
