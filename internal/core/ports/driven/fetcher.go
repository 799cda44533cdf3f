package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// Fetcher downloads a remote document.
type Fetcher interface {
	// Fetch retrieves the document at url. The returned filename is unique
	// per download.
	Fetch(ctx context.Context, url string) (*domain.RawDocument, error)
}
