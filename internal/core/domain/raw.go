package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// RawDocument represents opaque bytes handed to the ingestion pipeline.
// It is the fetcher's (or caller's) output before extraction.
type RawDocument struct {
	// Filename is the display and storage name of the document.
	Filename string

	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the declared content type, if any (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Hash returns the content hash of the raw bytes.
func (r *RawDocument) Hash() string {
	return ContentHash(r.Content)
}

// Stem returns the filename without directory and extension.
func (r *RawDocument) Stem() string {
	base := filepath.Base(r.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ContentHash returns the lowercase hex SHA-256 digest of b.
// The digest depends only on the bytes, never on the filename.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
