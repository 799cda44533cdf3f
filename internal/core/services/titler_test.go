package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTitler_Title(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		err         error
		wantTitle   string
		wantSummary string
		wantErr     bool
	}{
		{
			name:        "plain JSON",
			response:    `{"title": "Room rent cap", "summary": "Room rent is capped at 2%."}`,
			wantTitle:   "Room rent cap",
			wantSummary: "Room rent is capped at 2%.",
		},
		{
			name:        "fenced JSON",
			response:    "```json\n{\"title\": \" Exclusions \", \"summary\": \"Cosmetic care.\"}\n```",
			wantTitle:   "Exclusions",
			wantSummary: "Cosmetic care.",
		},
		{name: "not JSON", response: "Title: something", wantErr: true},
		{name: "LLM error", err: errors.New("quota"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{respond: func(_, _ string) (string, error) { return tt.response, tt.err }}
			titler := NewChunkTitler(llm)

			title, summary, err := titler.Title(context.Background(), "chunk text")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantSummary, summary)
			assert.True(t, llm.lastOpts.JSON)
		})
	}
}

func TestChunkTitler_CustomPrompt(t *testing.T) {
	var gotSystem string
	llm := &fakeLLM{respond: func(system, _ string) (string, error) {
		gotSystem = system
		return `{"title":"t","summary":"s"}`, nil
	}}
	titler := NewChunkTitler(llm)
	titler.SetPromptStore(mapPromptStore{"chunk_title": "Custom title prompt."})

	_, _, err := titler.Title(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Custom title prompt.", gotSystem)
}

func TestNewChunkTitler_NilLLM(t *testing.T) {
	assert.Nil(t, NewChunkTitler(nil))
}
