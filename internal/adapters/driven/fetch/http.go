// Package fetch downloads remote documents for ingestion.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure HTTPFetcher implements the interface.
var _ driven.Fetcher = (*HTTPFetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout  = 2 * time.Minute
	DefaultMaxBytes = 100 << 20
)

// ErrTooLarge is returned when a download exceeds the configured limit.
var ErrTooLarge = errors.New("document exceeds size limit")

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout bounds one download (default: 2m).
	Timeout time.Duration

	// MaxBytes caps the body size (default: 100 MiB).
	MaxBytes int64
}

// HTTPFetcher downloads documents with a plain GET.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
	newID    func() string
}

// NewHTTPFetcher creates a fetcher with the given configuration.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		maxBytes: cfg.MaxBytes,
		newID:    uuid.NewString,
	}
}

// Fetch downloads rawURL. Any status other than 200 is an error.
// The filename is "<uuid>_<basename of the URL path>".
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidInput, parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	return &domain.RawDocument{
		Filename: f.newID() + "_" + baseName(parsed),
		URI:      rawURL,
		MIMEType: mediaType(resp.Header.Get("Content-Type")),
		Content:  body,
	}, nil
}

func baseName(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "document"
	}
	return base
}

// mediaType strips parameters such as charset from a Content-Type value.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
