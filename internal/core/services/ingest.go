package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the content-addressed ingestion pipeline:
// hash, dedup lookup, extract, index, record.
//
// Concurrent ingestions of identical bytes within the process share a single
// run through singleflight. The run continues when the caller that started it
// goes away. When a ClaimLock is configured the claim also
// spans processes and the ledger is re-checked once it is held.
type IngestService struct {
	extractor driven.Extractor
	ledger    driven.DedupLedger
	indexer   *Indexer
	fetcher   driven.Fetcher
	lock      driven.ClaimLock
	claimTTL  time.Duration
	flight    singleflight.Group
	now       func() time.Time
}

// NewIngestService creates an ingest service.
func NewIngestService(extractor driven.Extractor, ledger driven.DedupLedger, indexer *Indexer) *IngestService {
	return &IngestService{
		extractor: extractor,
		ledger:    ledger,
		indexer:   indexer,
		claimTTL:  10 * time.Minute,
		now:       time.Now,
	}
}

// SetFetcher enables URL ingestion.
func (s *IngestService) SetFetcher(fetcher driven.Fetcher) {
	s.fetcher = fetcher
}

// SetClaimLock enables the cross-process ingest claim.
func (s *IngestService) SetClaimLock(lock driven.ClaimLock, ttl time.Duration) {
	s.lock = lock
	if ttl > 0 {
		s.claimTTL = ttl
	}
}

// Ingest processes raw bytes. Identical content is processed at most once.
func (s *IngestService) Ingest(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: document has no content", domain.ErrInvalidInput)
	}

	doc := &domain.Document{
		Filename:  raw.Filename,
		State:     domain.StateDownloaded,
		CreatedAt: s.now(),
	}

	doc.ID = raw.Hash()
	if err := doc.Advance(domain.StateHashed); err != nil {
		return nil, err
	}

	if record := s.lookup(ctx, doc.ID); record != nil {
		return cacheHit(doc, record)
	}

	// The run belongs to every caller sharing it, so one caller giving up
	// must not cancel it for the rest. It is bounded by the claim TTL.
	flight := s.flight.DoChan(doc.ID, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.claimTTL)
		defer cancel()
		return s.ingestOnce(runCtx, raw, doc)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-flight:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	ingested := res.Val.(*domain.Document)
	if res.Shared {
		logger.Debug("ingest: %s shared an in-flight ingestion of %s", raw.Filename, doc.ID)
		clone := *ingested
		return &clone, nil
	}
	return ingested, nil
}

// ingestOnce performs the uncached path for one content hash.
func (s *IngestService) ingestOnce(ctx context.Context, raw *domain.RawDocument, doc *domain.Document) (*domain.Document, error) {
	if s.lock != nil {
		release, err := s.lock.Claim(ctx, doc.ID, s.claimTTL)
		switch {
		case err == nil:
			defer release()
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			logger.Warn("ingest: claim for %s unavailable, continuing without it: %v", doc.ID, err)
		}
	}

	// A flight or another process may have finished since the first lookup.
	if record := s.lookup(ctx, doc.ID); record != nil {
		return cacheHit(doc, record)
	}

	extraction, err := s.extractor.Extract(ctx, raw)
	if err != nil {
		return nil, err
	}
	doc.Format = extraction.Format
	doc.Content = extraction.Text
	doc.Title = extraction.Title
	if err := doc.Advance(domain.StateExtracted); err != nil {
		return nil, err
	}
	if err := doc.Advance(domain.StateChunked); err != nil {
		return nil, err
	}

	report, err := s.indexer.Index(ctx, extraction.Text, doc.Identity())
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", doc.Filename, err)
	}
	doc.Report = report
	if err := doc.Advance(domain.StateIndexed); err != nil {
		return nil, err
	}

	if report.Indexed == 0 {
		logger.Warn("ingest: no chunk of %s was indexed, not recording it", doc.Filename)
		return doc, nil
	}

	record := domain.DedupRecord{
		Hash:      doc.ID,
		Filename:  doc.Filename,
		Format:    doc.Format,
		Chunks:    report.Indexed,
		CreatedAt: doc.CreatedAt,
	}
	if err := s.ledger.Record(ctx, record); err != nil {
		logger.Warn("ingest: record %s in ledger: %v", doc.ID, err)
	}

	logger.Info("ingest: %s indexed as %s (%d/%d chunks)", doc.Filename, doc.ID, report.Indexed, report.Chunks)
	return doc, nil
}

// lookup returns the ledger record for hash. Lookup failures are treated
// as a miss; reprocessing is idempotent.
func (s *IngestService) lookup(ctx context.Context, hash string) *domain.DedupRecord {
	if s.ledger == nil {
		return nil
	}
	record, err := s.ledger.Lookup(ctx, hash)
	switch {
	case err == nil:
		return record
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		logger.Warn("ingest: ledger lookup for %s failed, treating as miss: %v", hash, err)
		return nil
	}
}

// cacheHit finishes doc from an existing ledger record.
func cacheHit(doc *domain.Document, record *domain.DedupRecord) (*domain.Document, error) {
	if err := doc.Advance(domain.StateCacheHit); err != nil {
		return nil, err
	}
	doc.Filename = record.Filename
	doc.Format = record.Format
	logger.Debug("ingest: cache hit for %s (%s)", doc.ID, doc.Filename)
	return doc, nil
}

// IngestFile reads and ingests a local file.
func (s *IngestService) IngestFile(ctx context.Context, path, declaredMIME string) (*domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return s.Ingest(ctx, &domain.RawDocument{
		Filename: filepath.Base(path),
		URI:      path,
		MIMEType: declaredMIME,
		Content:  content,
	})
}

// IngestURL downloads and ingests a remote document.
func (s *IngestService) IngestURL(ctx context.Context, url string) (*domain.Document, error) {
	if s.fetcher == nil {
		return nil, errors.New("fetcher not configured")
	}

	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Cause: err}
	}

	return s.Ingest(ctx, raw)
}
