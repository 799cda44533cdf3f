package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// Normaliser decodes raw documents of one format into canonical text.
// Each normaliser handles exactly one domain.Format.
type Normaliser interface {
	// Format returns the format variant this normaliser decodes.
	Format() domain.Format

	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Normalise decodes a raw document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the Chunker, not the normaliser.
type NormaliseResult struct {
	// Text is the canonical plain text.
	Text string

	// Title is a best-effort document title. May be empty.
	Title string
}
