package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure ChunkTitler accepts custom prompts.
var _ driven.PromptStoreAware = (*ChunkTitler)(nil)

// titleMaxTokens bounds the JSON response.
const titleMaxTokens = 200

// ChunkTitler derives a short title and summary for a chunk through an LLM.
type ChunkTitler struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewChunkTitler creates a titler. Returns nil when llm is nil so callers
// can skip titling with a nil check.
func NewChunkTitler(llm driven.LLMService) *ChunkTitler {
	if llm == nil {
		return nil
	}
	return &ChunkTitler{llm: llm}
}

// SetPromptStore sets the prompt store for the chunk_title prompt.
func (t *ChunkTitler) SetPromptStore(store driven.PromptStore) {
	t.prompts = store
}

type titleResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Title returns the title and summary of content.
func (t *ChunkTitler) Title(ctx context.Context, content string) (title, summary string, err error) {
	system := loadPrompt(t.prompts, driven.PromptChunkTitle, defaultChunkTitlePrompt)

	raw, err := t.llm.Complete(ctx, system, content, driven.CompleteOptions{
		MaxTokens: titleMaxTokens,
		JSON:      true,
	})
	if err != nil {
		return "", "", fmt.Errorf("title chunk: %w", err)
	}

	var resp titleResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return "", "", fmt.Errorf("parse title response: %w", err)
	}

	return strings.TrimSpace(resp.Title), strings.TrimSpace(resp.Summary), nil
}

// stripCodeFence removes a surrounding ```json fence that some models add
// even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
