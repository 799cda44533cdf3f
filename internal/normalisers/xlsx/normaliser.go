// Package xlsx renders every worksheet of an Excel workbook as a text table.
package xlsx

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
	"github.com/custodia-labs/docqa-cli/internal/normalisers/tabular"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles XLSX workbooks.
type Normaliser struct{}

// New creates a new XLSX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns the format variant this normaliser decodes.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatXLSX
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
}

// Normalise renders one table per sheet in workbook order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	book, err := excelize.OpenReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", domain.ErrInvalidInput, err)
	}
	defer book.Close()

	var sheets []tabular.Sheet
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name)
		if err != nil {
			logger.Warn("xlsx: skipping sheet %q in %s: %v", name, raw.Filename, err)
			continue
		}
		sheets = append(sheets, tabular.Sheet{Name: name, Rows: rows})
	}

	return &driven.NormaliseResult{
		Text:  tabular.Render(sheets...),
		Title: workbookTitle(book, raw),
	}, nil
}

// workbookTitle prefers the document properties title over the file stem.
func workbookTitle(book *excelize.File, raw *domain.RawDocument) string {
	props, err := book.GetDocProps()
	if err == nil && props != nil && props.Title != "" {
		return props.Title
	}
	return raw.Stem()
}
