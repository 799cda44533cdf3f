package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Indexer turns canonical text into persisted, embedded chunks.
//
// Ordinals are fixed by the chunker before any concurrent work starts.
// Each chunk is then embedded and persisted on a bounded worker pool.
// Chunks without a valid embedding are flagged degraded and not inserted;
// failed inserts are logged and skipped. A partially indexed document is
// a successful result.
type Indexer struct {
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	store    driven.VectorStore
	titler   *ChunkTitler
	pool     *ants.Pool
}

// NewIndexer creates an indexer with the given number of workers.
func NewIndexer(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	workers int,
) (*Indexer, error) {
	pool, err := newPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create index pool: %w", err)
	}
	return &Indexer{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		pool:     pool,
	}, nil
}

// SetTitler enables LLM-derived chunk titles and summaries.
func (ix *Indexer) SetTitler(titler *ChunkTitler) {
	ix.titler = titler
}

// Release stops the worker pool.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// Index chunks text and persists every chunk under identity.
func (ix *Indexer) Index(ctx context.Context, text string, identity domain.DocumentIdentity) (*domain.IndexReport, error) {
	if ix.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	if ix.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	chunks := ix.chunker.Process(identity.ID, text)
	report := &domain.IndexReport{Chunks: len(chunks)}
	logger.Debug("index: %s has %d chunks", identity.Filename, len(chunks))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := range chunks {
		chunk := &chunks[i]
		submit(ix.pool, &wg, func() {
			outcome := ix.indexChunk(ctx, chunk)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeIndexed:
				report.Indexed++
			case outcomeDegraded:
				report.Degraded++
			case outcomeFailed:
				report.Failed++
			}
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	if !report.Complete() {
		logger.Warn("index: %s partially indexed: %d/%d chunks (%d degraded, %d failed)",
			identity.Filename, report.Indexed, report.Chunks, report.Degraded, report.Failed)
	}

	return report, nil
}

type chunkOutcome int

const (
	outcomeIndexed chunkOutcome = iota
	outcomeDegraded
	outcomeFailed
)

// indexChunk embeds, optionally titles and persists one chunk.
func (ix *Indexer) indexChunk(ctx context.Context, chunk *domain.Chunk) chunkOutcome {
	vec, err := ix.embedder.Embed(ctx, chunk.Content)
	if err != nil || IsZeroVector(vec) {
		chunk.Degraded = true
		var embErr *domain.EmbeddingError
		if errors.As(err, &embErr) {
			logger.Warn("index: chunk %d degraded after %d attempt(s): %v", chunk.Ordinal, embErr.Attempts, embErr.Cause)
		} else {
			logger.Warn("index: chunk %d degraded: %v", chunk.Ordinal, err)
		}
		return outcomeDegraded
	}
	chunk.Embedding = vec

	if ix.titler != nil {
		title, summary, err := ix.titler.Title(ctx, chunk.Content)
		if err != nil {
			logger.Debug("index: chunk %d untitled: %v", chunk.Ordinal, err)
		} else {
			chunk.Title = title
			chunk.Summary = summary
		}
	}

	if err := ix.store.Insert(ctx, *chunk); err != nil {
		writeErr := &domain.IndexWriteError{DocumentID: chunk.DocumentID, Ordinal: chunk.Ordinal, Cause: err}
		logger.Warn("index: %v", writeErr)
		return outcomeFailed
	}

	return outcomeIndexed
}
