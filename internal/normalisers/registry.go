package normalisers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.Extractor = (*Registry)(nil)

// Registry dispatches raw documents to the normaliser for their format.
// A format without a registered normaliser is decoded by the fallback
// normaliser, which always attempts a raw-byte decode.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.Format]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{
		normalisers: make(map[domain.Format]driven.Normaliser),
	}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser, replacing any existing one for its format.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers[normaliser.Format()] = normaliser
}

// SupportedFormats returns the formats with a registered normaliser.
func (r *Registry) SupportedFormats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]domain.Format, 0, len(r.normalisers))
	for _, f := range domain.Formats() {
		if _, ok := r.normalisers[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

// Extract resolves the document format once and decodes it.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Extraction, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	name := raw.Filename
	if name == "" {
		name = raw.URI
	}
	format := domain.DetectFormat(name, raw.MIMEType)

	normaliser, ok := r.get(format)
	if !ok {
		logger.Debug("extract: no %s normaliser registered, using fallback for %s", format, name)
		normaliser, ok = r.get(domain.FormatFallback)
		if !ok {
			return nil, &domain.ExtractionError{Format: format, Cause: domain.ErrUnsupportedFormat}
		}
		format = domain.FormatFallback
	}

	logger.Debug("extract: %s as %s (%d bytes)", name, format, len(raw.Content))

	result, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return nil, &domain.ExtractionError{Format: format, Cause: err}
	}

	return &domain.Extraction{
		Format: format,
		Text:   Sanitize(result.Text),
		Title:  strings.TrimSpace(result.Title),
	}, nil
}

// ExtractFile reads a local file and extracts it. declaredMIME may be empty.
func (r *Registry) ExtractFile(ctx context.Context, path, declaredMIME string) (*domain.Extraction, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r.Extract(ctx, &domain.RawDocument{
		Filename: filepath.Base(path),
		URI:      path,
		MIMEType: declaredMIME,
		Content:  content,
	})
}

func (r *Registry) get(format domain.Format) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.normalisers[format]
	return n, ok
}

// Sanitize removes NUL bytes and surrounding whitespace.
func Sanitize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\x00", ""))
}
