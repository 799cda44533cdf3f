package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor is registered for a format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmptyDocument indicates extraction produced no text.
	ErrEmptyDocument = errors.New("document has no extractable text")

	// ErrNoQuestions indicates an answer batch without questions.
	ErrNoQuestions = errors.New("no questions given")

	// ErrLLMUnavailable indicates the LLM service is not configured or
	// rejected the request outright. Answer generation is impossible.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCircuitOpen indicates the embedding circuit breaker is open and
	// calls fail fast until the cooldown elapses.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrVectorStoreUnavailable indicates the vector store is not configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrImageDescriberUnavailable indicates no vision model is configured.
	// Images cannot be turned into text without one.
	ErrImageDescriberUnavailable = errors.New("image describer unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrClaimTimeout indicates the ingest claim for a hash could not be acquired.
	ErrClaimTimeout = errors.New("ingest claim timed out")
)

// ExtractionError is returned when a format decoder fails on a document.
type ExtractionError struct {
	Format Format
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// EmbeddingError is returned alongside the zero-vector sentinel when no
// embedding could be produced after retries.
type EmbeddingError struct {
	Attempts int
	Cause    error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// IndexWriteError is a failed persistence of a single chunk.
type IndexWriteError struct {
	DocumentID string
	Ordinal    int
	Cause      error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index chunk %d of %s: %v", e.Ordinal, e.DocumentID, e.Cause)
}

func (e *IndexWriteError) Unwrap() error {
	return e.Cause
}

// RetrievalError is a failed nearest-chunk lookup. It is never surfaced to
// the caller; the question proceeds with an empty context.
type RetrievalError struct {
	DocumentID string
	Cause      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve from %s: %v", e.DocumentID, e.Cause)
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// AnswerGenerationError is a per-question failure of a batch.
type AnswerGenerationError struct {
	Index    int
	Question string
	Cause    error
}

func (e *AnswerGenerationError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index, e.Cause)
}

func (e *AnswerGenerationError) Unwrap() error {
	return e.Cause
}

// FetchError is a failed download of a remote document.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
