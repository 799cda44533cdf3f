package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// DocumentService exposes ingested documents.
type DocumentService interface {
	// List returns every ingested document, newest first.
	List(ctx context.Context) ([]domain.DedupRecord, error)

	// Get returns the record for a document ID (content hash).
	Get(ctx context.Context, documentID string) (*domain.DedupRecord, error)

	// Chunks returns the indexed chunks of a document in ordinal order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetContent returns the indexed chunk text joined in ordinal order.
	// Overlapping windows repeat their shared tokens.
	GetContent(ctx context.Context, documentID string) (string, error)
}
