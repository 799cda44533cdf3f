package services

import (
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Built-in prompts, used when no PromptStore is set or it cannot load one.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const (
	defaultAnswerSystemPrompt = `You are a precise document assistant. Answer the user's query using only the retrieved chunks. Quote figures, limits and conditions exactly as they appear. If the retrieved chunks say "No relevant context found.", answer from general knowledge and say that the document did not cover the question. Keep answers to one or two sentences.`

	defaultAnswerUserPrompt = "Retrieved Chunks: %s.\nUser Query: %s."

	defaultChunkTitlePrompt = `Read the document excerpt and return a JSON object with exactly two keys: "title" (at most eight words) and "summary" (one sentence). Return only the JSON object.`
)

// NoContext is the literal context used when retrieval yields no chunks.
const NoContext = "No relevant context found."

// chunkSeparator joins retrieved chunks in the answer prompt.
const chunkSeparator = "\n\n---\n\n"

// loadPrompt returns the named prompt from store, or fallback.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
