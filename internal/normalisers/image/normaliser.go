// Package image turns a standalone picture into text via the image describer.
package image

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles image documents.
type Normaliser struct {
	describer driven.ImageDescriber
}

// New creates an image normaliser.
func New(describer driven.ImageDescriber) *Normaliser {
	return &Normaliser{describer: describer}
}

// Format returns the format variant this normaliser decodes.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatImage
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp"}
}

// Normalise uses the describer's output directly as the document text.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if n.describer == nil {
		return nil, domain.ErrImageDescriberUnavailable
	}

	mimeType := raw.MIMEType
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = domain.ImageMIMEType(raw.Filename)
	}

	description, err := n.describer.Describe(ctx, raw.Content, mimeType)
	if err != nil {
		return nil, fmt.Errorf("describe image: %w", err)
	}

	return &driven.NormaliseResult{
		Text:  strings.TrimSpace(description),
		Title: raw.Stem(),
	}, nil
}
