// Package csv renders comma-separated files as a text table.
package csv

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"fmt"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/tabular"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV documents.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns the format variant this normaliser decodes.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatCSV
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv", "application/csv"}
}

// Normalise renders the file as a single sheet named after the file stem.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader := stdcsv.NewReader(bytes.NewReader([]byte(plaintext.Decode(raw.Content))))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %w", domain.ErrInvalidInput, err)
	}

	name := raw.Stem()
	return &driven.NormaliseResult{
		Text:  tabular.Render(tabular.Sheet{Name: name, Rows: rows}),
		Title: name,
	}, nil
}
