package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Queries are a linear cosine scan over the chunks of one document.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string]map[int]domain.Chunk
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		chunks: make(map[string]map[int]domain.Chunk),
	}
}

// Insert stores or replaces the chunk at (document, ordinal).
func (s *VectorStore) Insert(_ context.Context, chunk domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.chunks[chunk.DocumentID]
	if !ok {
		doc = make(map[int]domain.Chunk)
		s.chunks[chunk.DocumentID] = doc
	}
	chunk.Embedding = append([]float32(nil), chunk.Embedding...)
	doc[chunk.Ordinal] = chunk
	return nil
}

// Query returns up to k chunks of documentID, best first.
func (s *VectorStore) Query(_ context.Context, documentID string, vector []float32, k int) ([]domain.ScoredChunk, error) {
	return domain.TopK(s.snapshot(documentID), vector, k), nil
}

// Chunks returns all chunks of a document ordered by ordinal.
func (s *VectorStore) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	return s.snapshot(documentID), nil
}

// DeleteDocument removes every chunk of a document.
func (s *VectorStore) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// Count returns the number of stored chunks for a document.
func (s *VectorStore) Count(documentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID])
}

// Close releases resources (no-op for memory store).
func (s *VectorStore) Close() error {
	return nil
}

func (s *VectorStore) snapshot(documentID string) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.chunks[documentID]
	result := make([]domain.Chunk, 0, len(doc))
	for _, chunk := range doc {
		result = append(result, chunk)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Ordinal < result[j].Ordinal
	})
	return result
}
