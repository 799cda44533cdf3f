package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrEmptyDocument", ErrEmptyDocument},
		{"ErrNoQuestions", ErrNoQuestions},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrCircuitOpen", ErrCircuitOpen},
		{"ErrVectorStoreUnavailable", ErrVectorStoreUnavailable},
		{"ErrImageDescriberUnavailable", ErrImageDescriberUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrClaimTimeout", ErrClaimTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
	assert.False(t, errors.Is(ErrLLMUnavailable, ErrEmbeddingUnavailable))
}

func TestTypedErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "extraction",
			err:     &ExtractionError{Format: FormatPDF, Cause: cause},
			message: "extract pdf: boom",
		},
		{
			name:    "embedding",
			err:     &EmbeddingError{Attempts: 3, Cause: cause},
			message: "embedding failed after 3 attempt(s): boom",
		},
		{
			name:    "index write",
			err:     &IndexWriteError{DocumentID: "abc", Ordinal: 4, Cause: cause},
			message: "index chunk 4 of abc: boom",
		},
		{
			name:    "retrieval",
			err:     &RetrievalError{DocumentID: "abc", Cause: cause},
			message: "retrieve from abc: boom",
		},
		{
			name:    "answer generation",
			err:     &AnswerGenerationError{Index: 2, Question: "q", Cause: cause},
			message: "question 2: boom",
		},
		{
			name:    "fetch",
			err:     &FetchError{URL: "https://example.com/a.pdf", Cause: cause},
			message: "fetch https://example.com/a.pdf: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestExtractionError_As(t *testing.T) {
	wrapped := fmt.Errorf("ingest: %w", &ExtractionError{Format: FormatXLSX, Cause: ErrInvalidInput})

	var extractErr *ExtractionError
	require.True(t, errors.As(wrapped, &extractErr))
	assert.Equal(t, FormatXLSX, extractErr.Format)
	assert.ErrorIs(t, wrapped, ErrInvalidInput)
}
