package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes ingested documents from the dedup ledger and
// their chunks from the vector store.
type DocumentService struct {
	ledger driven.DedupLedger
	store  driven.VectorStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(ledger driven.DedupLedger, store driven.VectorStore) *DocumentService {
	return &DocumentService{
		ledger: ledger,
		store:  store,
	}
}

// List returns every ingested document, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.DedupRecord, error) {
	records, err := s.ledger.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// minPrefixLen is the shortest ID prefix Get resolves.
const minPrefixLen = 6

// Get retrieves a document record by ID. An unambiguous ID prefix of at
// least six characters resolves to the full record.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.DedupRecord, error) {
	record, err := s.ledger.Lookup(ctx, documentID)
	if !errors.Is(err, domain.ErrNotFound) || len(documentID) < minPrefixLen {
		return record, err
	}

	records, listErr := s.ledger.List(ctx)
	if listErr != nil {
		return nil, err
	}
	var match *domain.DedupRecord
	for i := range records {
		if !strings.HasPrefix(records[i].Hash, documentID) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: ambiguous document id prefix %q", domain.ErrInvalidInput, documentID)
		}
		match = &records[i]
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}

// Chunks returns the indexed chunks of a document in ordinal order.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if s.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	chunks, err := s.store.Chunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Ordinal < chunks[j].Ordinal
	})
	return chunks, nil
}

// GetContent returns the concatenated content of all chunks.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	chunks, err := s.Chunks(ctx, documentID)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", domain.ErrNotFound
	}

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(chunk.Content)
	}
	return builder.String(), nil
}
