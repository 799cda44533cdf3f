package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// Extractor turns any supported document into canonical text.
// It resolves the format once and dispatches to the matching normaliser.
type Extractor interface {
	// Extract decodes a raw document. Decoder failures are returned as
	// *domain.ExtractionError.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error)

	// Register adds a normaliser, replacing any existing one for its format.
	Register(normaliser Normaliser)

	// SupportedFormats returns the formats with a registered normaliser.
	SupportedFormats() []domain.Format
}
