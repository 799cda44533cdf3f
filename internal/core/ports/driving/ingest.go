package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// IngestService turns documents into a content-addressed, searchable index.
type IngestService interface {
	// Ingest processes raw bytes. Identical content is processed at most
	// once; later calls return the recorded identity with State cache_hit.
	Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	// IngestFile reads and ingests a local file. declaredMIME may be empty.
	IngestFile(ctx context.Context, path, declaredMIME string) (*domain.Document, error)

	// IngestURL downloads and ingests a remote document.
	IngestURL(ctx context.Context, url string) (*domain.Document, error)
}
