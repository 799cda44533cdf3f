package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure DedupLedger implements the interface.
var _ driven.DedupLedger = (*DedupLedger)(nil)

// DedupLedger is an in-memory implementation of driven.DedupLedger.
type DedupLedger struct {
	mu      sync.RWMutex
	records map[string]domain.DedupRecord
}

// NewDedupLedger creates a new in-memory ledger.
func NewDedupLedger() *DedupLedger {
	return &DedupLedger{
		records: make(map[string]domain.DedupRecord),
	}
}

// Lookup returns the record for hash.
func (l *DedupLedger) Lookup(_ context.Context, hash string) (*domain.DedupRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, ok := l.records[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// Record stores a mapping. The first record for a hash wins.
func (l *DedupLedger) Record(_ context.Context, record domain.DedupRecord) error {
	if record.Hash == "" {
		return domain.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.records[record.Hash]; exists {
		return nil
	}
	l.records[record.Hash] = record
	return nil
}

// List returns all records, newest first.
func (l *DedupLedger) List(_ context.Context) ([]domain.DedupRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.DedupRecord, 0, len(l.records))
	for _, record := range l.records {
		result = append(result, record)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Close releases resources (no-op for memory store).
func (l *DedupLedger) Close() error {
	return nil
}
