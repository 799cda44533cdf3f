package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func TestDocumentService_List(t *testing.T) {
	ledger := memory.NewDedupLedger()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "a", Filename: "old.pdf", CreatedAt: base}))
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "b", Filename: "new.pdf", CreatedAt: base.Add(time.Hour)}))

	s := NewDocumentService(ledger, memory.NewVectorStore())

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new.pdf", records[0].Filename)

	record, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "old.pdf", record.Filename)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_GetByPrefix(t *testing.T) {
	ledger := memory.NewDedupLedger()
	ctx := context.Background()
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "abcdef0123", Filename: "one.pdf"}))
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "abcdef9999", Filename: "two.pdf"}))
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "fedcba0000", Filename: "three.pdf"}))

	s := NewDocumentService(ledger, nil)

	tests := []struct {
		name     string
		id       string
		wantFile string
		wantErr  error
	}{
		{name: "unique prefix", id: "fedcba", wantFile: "three.pdf"},
		{name: "longer unique prefix", id: "abcdef01", wantFile: "one.pdf"},
		{name: "ambiguous prefix", id: "abcdef", wantErr: domain.ErrInvalidInput},
		{name: "too short", id: "fedcb", wantErr: domain.ErrNotFound},
		{name: "no match", id: "012345", wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := s.Get(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, record.Filename)
		})
	}
}

func TestDocumentService_ChunksAndContent(t *testing.T) {
	store := memory.NewVectorStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, domain.Chunk{DocumentID: "doc", Ordinal: 1, Content: "second"}))
	require.NoError(t, store.Insert(ctx, domain.Chunk{DocumentID: "doc", Ordinal: 0, Content: "first"}))

	s := NewDocumentService(memory.NewDedupLedger(), store)

	chunks, err := s.Chunks(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Content)

	content, err := s.GetContent(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", content)

	_, err = s.GetContent(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_NoStore(t *testing.T) {
	s := NewDocumentService(memory.NewDedupLedger(), nil)
	_, err := s.Chunks(context.Background(), "doc")
	assert.ErrorIs(t, err, domain.ErrVectorStoreUnavailable)
}
