package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// VectorStore persists embedded chunks and answers nearest-chunk queries
// scoped to a single document.
//
// Insert is an upsert keyed by (document, ordinal): re-indexing the same
// document replaces rows instead of duplicating them.
type VectorStore interface {
	// Insert persists one chunk with its embedding.
	Insert(ctx context.Context, chunk domain.Chunk) error

	// Query returns up to k chunks of documentID ordered by similarity to
	// vector, best first.
	Query(ctx context.Context, documentID string, vector []float32, k int) ([]domain.ScoredChunk, error)

	// Chunks returns all chunks of a document ordered by ordinal.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes every chunk of a document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}
