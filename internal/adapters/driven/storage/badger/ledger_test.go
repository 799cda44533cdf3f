package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()

	ledger, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, ledger.Close())
	})
	return ledger
}

func TestLedger_LookupMiss(t *testing.T) {
	ledger := openTestLedger(t)

	_, err := ledger.Lookup(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_RecordAndLookup(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{
		Hash:      "abc",
		Filename:  "policy.pdf",
		Format:    domain.FormatPDF,
		Chunks:    12,
		CreatedAt: created,
	}))

	record, err := ledger.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "policy.pdf", record.Filename)
	assert.Equal(t, domain.FormatPDF, record.Format)
	assert.Equal(t, 12, record.Chunks)
	assert.True(t, created.Equal(record.CreatedAt))
}

func TestLedger_FirstRecordWins(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "abc", Filename: "first.pdf"}))
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "abc", Filename: "second.pdf"}))

	record, err := ledger.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", record.Filename)
}

func TestLedger_ConcurrentRecords(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "same", Filename: "copy.pdf"}))
		}()
	}
	wg.Wait()

	records, err := ledger.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLedger_RecordRequiresHash(t *testing.T) {
	ledger := openTestLedger(t)

	err := ledger.Record(context.Background(), domain.DedupRecord{Filename: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedger_ListNewestFirst(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "old", CreatedAt: base}))
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "new", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "mid", CreatedAt: base.Add(time.Minute)}))

	records, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{records[0].Hash, records[1].Hash, records[2].Hash})
}

func TestLedger_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ledger, err := Open(dir, false)
	require.NoError(t, err)
	require.NoError(t, ledger.Record(ctx, domain.DedupRecord{Hash: "abc", Filename: "kept.docx"}))
	require.NoError(t, ledger.Close())

	reopened, err := Open(dir, false)
	require.NoError(t, err)
	defer reopened.Close()

	record, err := reopened.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "kept.docx", record.Filename)
}
