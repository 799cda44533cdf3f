package domain

import (
	"fmt"
	"time"
)

// DocumentState is a step in the lifecycle of one ingestion.
//
//	downloaded -> hashed -> cache_hit (terminal)
//	downloaded -> hashed -> extracted -> chunked -> indexed (terminal)
type DocumentState string

// Lifecycle states.
const (
	StateDownloaded DocumentState = "downloaded"
	StateHashed     DocumentState = "hashed"
	StateCacheHit   DocumentState = "cache_hit"
	StateExtracted  DocumentState = "extracted"
	StateChunked    DocumentState = "chunked"
	StateIndexed    DocumentState = "indexed"
)

// IsTerminal returns true if no further transition is possible.
func (s DocumentState) IsTerminal() bool {
	return s == StateCacheHit || s == StateIndexed
}

// CanTransition reports whether moving from s to next is a legal step.
func (s DocumentState) CanTransition(next DocumentState) bool {
	switch s {
	case StateDownloaded:
		return next == StateHashed
	case StateHashed:
		return next == StateCacheHit || next == StateExtracted
	case StateExtracted:
		return next == StateChunked
	case StateChunked:
		return next == StateIndexed
	default:
		return false
	}
}

// DocumentIdentity is the stable reference under which all chunks of one
// document are indexed. ID is the content hash.
type DocumentIdentity struct {
	ID       string
	Filename string
}

// Document is owned by the ingestion pipeline for the duration of one call.
type Document struct {
	// ID is the content hash of the raw bytes.
	ID string

	// Filename is the display/storage name. On a cache hit this is the
	// filename recorded by the first ingestion.
	Filename string

	// Format is the detected format.
	Format Format

	// State is the current lifecycle state.
	State DocumentState

	// Content is the canonical text. Empty on cache hits.
	Content string

	// Title is a best-effort title from the extractor.
	Title string

	// Report summarises indexing. Nil on cache hits.
	Report *IndexReport

	CreatedAt time.Time
}

// Identity returns the document identity.
func (d *Document) Identity() DocumentIdentity {
	return DocumentIdentity{ID: d.ID, Filename: d.Filename}
}

// Advance moves the document to the next lifecycle state.
func (d *Document) Advance(next DocumentState) error {
	if !d.State.CanTransition(next) {
		return fmt.Errorf("%w: illegal transition %s -> %s", ErrInvalidInput, d.State, next)
	}
	d.State = next
	return nil
}

// Chunk is a bounded segment of canonical text. Chunks are never mutated
// after persistence.
type Chunk struct {
	// ID is a unique identifier for the chunk row.
	ID string

	// DocumentID is the content hash of the source document.
	DocumentID string

	// Ordinal is the dense position in [0, N).
	Ordinal int

	// Content is the chunk text.
	Content string

	// Embedding is the vector for semantic search.
	Embedding []float32

	// Title and Summary are optionally derived by a language model.
	Title   string
	Summary string

	// Degraded is set when no valid embedding could be produced.
	Degraded bool
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// IndexReport summarises one run of the indexing pipeline.
type IndexReport struct {
	// Chunks is the number of chunks produced by the chunker.
	Chunks int

	// Indexed is the number of chunks persisted.
	Indexed int

	// Degraded is the number of chunks without a valid embedding.
	Degraded int

	// Failed is the number of chunks whose write failed.
	Failed int
}

// Complete returns true if every chunk was persisted.
func (r *IndexReport) Complete() bool {
	return r.Indexed == r.Chunks
}

// DedupRecord maps a content hash to its document identity.
// At most one record exists per hash and it is never rewritten.
type DedupRecord struct {
	Hash      string    `json:"hash"`
	Filename  string    `json:"filename"`
	Format    Format    `json:"format"`
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity returns the document identity for the record.
func (r *DedupRecord) Identity() DocumentIdentity {
	return DocumentIdentity{ID: r.Hash, Filename: r.Filename}
}

// Extraction is the output of the content extractor.
type Extraction struct {
	Format Format
	Text   string
	Title  string
}
