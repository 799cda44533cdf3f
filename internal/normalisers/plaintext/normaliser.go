// Package plaintext is the generic fallback decoder: raw bytes read as text.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser decodes any byte sequence as UTF-8, dropping invalid bytes.
// It never fails on non-nil input.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns the fallback variant.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatFallback
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/html",
		"text/yaml",
		"application/json",
		"application/xml",
		"application/octet-stream",
	}
}

// Normalise converts the raw bytes to text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &driven.NormaliseResult{
		Text:  Decode(raw.Content),
		Title: raw.Stem(),
	}, nil
}

// Decode returns b as a string with invalid UTF-8 sequences removed and a
// leading byte order mark stripped.
func Decode(b []byte) string {
	text := strings.ToValidUTF8(string(b), "")
	return strings.TrimPrefix(text, "\uFEFF")
}
