package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// DedupLedger is the persistent content hash to document identity mapping.
type DedupLedger interface {
	// Lookup returns the record for hash, or domain.ErrNotFound.
	Lookup(ctx context.Context, hash string) (*domain.DedupRecord, error)

	// Record stores a mapping. The first record for a hash wins; recording
	// an existing hash is a no-op.
	Record(ctx context.Context, record domain.DedupRecord) error

	// List returns all records, newest first.
	List(ctx context.Context) ([]domain.DedupRecord, error)

	// Close releases resources.
	Close() error
}

// ClaimLock is a cross-process claim on a content hash. Holding the claim
// means no other process is ingesting the same content.
// This is an optional service - when nil, single-flight is per process.
type ClaimLock interface {
	// Claim blocks until the claim for hash is held or ctx is done.
	// The returned release func must be called exactly once.
	Claim(ctx context.Context, hash string, ttl time.Duration) (release func(), err error)
}
