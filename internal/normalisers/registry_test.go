package normalisers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// stubNormaliser returns a fixed result for its format.
type stubNormaliser struct {
	format domain.Format
	text   string
	err    error
	calls  int
}

func (s *stubNormaliser) Format() domain.Format        { return s.format }
func (s *stubNormaliser) SupportedMIMETypes() []string { return nil }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &driven.NormaliseResult{Text: s.text, Title: raw.Stem()}, nil
}

func TestRegistry_Dispatch(t *testing.T) {
	pdfStub := &stubNormaliser{format: domain.FormatPDF, text: "pdf text"}
	fallback := &stubNormaliser{format: domain.FormatFallback, text: "raw text"}
	registry := NewRegistry(pdfStub, fallback)

	tests := []struct {
		name       string
		raw        *domain.RawDocument
		wantFormat domain.Format
		wantText   string
	}{
		{
			name:       "by extension",
			raw:        &domain.RawDocument{Filename: "policy.pdf"},
			wantFormat: domain.FormatPDF,
			wantText:   "pdf text",
		},
		{
			name:       "by mime when extension unknown",
			raw:        &domain.RawDocument{Filename: "download", MIMEType: "application/pdf"},
			wantFormat: domain.FormatPDF,
			wantText:   "pdf text",
		},
		{
			name:       "uri used when filename empty",
			raw:        &domain.RawDocument{URI: "https://example.com/files/policy.pdf"},
			wantFormat: domain.FormatPDF,
			wantText:   "pdf text",
		},
		{
			name:       "unknown goes to fallback",
			raw:        &domain.RawDocument{Filename: "notes.txt"},
			wantFormat: domain.FormatFallback,
			wantText:   "raw text",
		},
		{
			name:       "unregistered variant goes to fallback",
			raw:        &domain.RawDocument{Filename: "sheet.xlsx"},
			wantFormat: domain.FormatFallback,
			wantText:   "raw text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extraction, err := registry.Extract(context.Background(), tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, extraction.Format)
			assert.Equal(t, tt.wantText, extraction.Text)
		})
	}
}

func TestRegistry_DecoderFailure(t *testing.T) {
	cause := errors.New("corrupt xref table")
	pdfStub := &stubNormaliser{format: domain.FormatPDF, err: cause}
	fallback := &stubNormaliser{format: domain.FormatFallback, text: "raw"}
	registry := NewRegistry(pdfStub, fallback)

	_, err := registry.Extract(context.Background(), &domain.RawDocument{Filename: "bad.pdf"})
	require.Error(t, err)

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, domain.FormatPDF, extractionErr.Format)
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, fallback.calls, "structured decoder failures are not retried")
}

func TestRegistry_NoFallback(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Extract(context.Background(), &domain.RawDocument{Filename: "a.txt"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestRegistry_NilInput(t *testing.T) {
	_, err := NewRegistry().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_Sanitizes(t *testing.T) {
	registry := NewRegistry(&stubNormaliser{format: domain.FormatFallback, text: "\n a\x00b \x00\n"})

	extraction, err := registry.Extract(context.Background(), &domain.RawDocument{Filename: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ab", extraction.Text)
}

func TestRegistry_SupportedFormats(t *testing.T) {
	registry := NewRegistry(
		&stubNormaliser{format: domain.FormatFallback},
		&stubNormaliser{format: domain.FormatCSV},
	)
	assert.Equal(t, []domain.Format{domain.FormatCSV, domain.FormatFallback}, registry.SupportedFormats())
}

func TestDefaultRegistry_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,Age\nAsha,30\n"), 0o600))

	extraction, err := NewDefaultRegistry(nil).ExtractFile(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, domain.FormatCSV, extraction.Format)
	assert.Contains(t, extraction.Text, "Sheet: people")
	assert.Contains(t, extraction.Text, "Asha")
	assert.Contains(t, extraction.Text, "30")
}

func TestDefaultRegistry_ImageWithoutDescriber(t *testing.T) {
	_, err := NewDefaultRegistry(nil).Extract(context.Background(), &domain.RawDocument{Filename: "scan.png", Content: []byte{0x89}})

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, domain.FormatImage, extractionErr.Format)
	assert.ErrorIs(t, err, domain.ErrImageDescriberUnavailable)
}

func TestDefaultRegistry_AllFormats(t *testing.T) {
	assert.ElementsMatch(t, domain.Formats(), NewDefaultRegistry(nil).SupportedFormats())
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := NewDefaultRegistry(nil).ExtractFile(context.Background(), "/does/not/exist.pdf", "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello world", Sanitize("  hello\x00 world\n"))
	assert.Empty(t, Sanitize("\x00\x00"))
}
