package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/fetch"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/lock"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/services"
	"github.com/custodia-labs/docqa-cli/internal/logger"
	"github.com/custodia-labs/docqa-cli/internal/normalisers"
	"github.com/custodia-labs/docqa-cli/internal/postprocessors/chunker"
)

// app holds the wired services. Fields stay nil when their collaborators
// could not be built.
type app struct {
	ingest    *services.IngestService
	answer    *services.AnswerService
	document  *services.DocumentService
	extractor *normalisers.Registry

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) onClose(name string, fn func() error) {
	a.closers = append(a.closers, func() {
		if err := fn(); err != nil {
			logger.Warn("closing %s: %v", name, err)
		}
	})
}

// cliServices exposes the built services. Missing services stay nil
// interfaces so the commands can tell they are absent.
func (a *app) cliServices() cli.Services {
	var svc cli.Services
	if a.ingest != nil {
		svc.Ingest = a.ingest
	}
	if a.answer != nil {
		svc.Answer = a.answer
	}
	if a.document != nil {
		svc.Document = a.document
	}
	if a.extractor != nil {
		svc.Extractor = a.extractor
	}
	return svc
}

// buildApp wires storage, extraction, the AI services and the core
// services. Storage failures and a missing embedding provider are returned
// as the init error; commands that do not need the pipeline keep working.
func buildApp(ctx context.Context, settings *domain.AppSettings) (*app, error) {
	a := &app{}

	var prompts driven.PromptStore
	if ps, err := file.NewPromptStore(""); err != nil {
		logger.Warn("prompts: %v, using built-in prompts", err)
	} else {
		prompts = ps
	}

	store, ledger, err := a.openStorage(settings)
	if err != nil {
		return a, err
	}
	a.document = services.NewDocumentService(ledger, store)

	aiResult, aiErr := ai.Build(settings, prompts)
	if aiResult != nil {
		a.closers = append(a.closers, aiResult.Close)
		for _, warning := range aiResult.Warnings {
			logger.Debug("ai: %s", warning)
		}
	}

	var describer driven.ImageDescriber
	if aiResult != nil && aiResult.ImageDescriber != nil {
		describer = aiResult.ImageDescriber
	}
	a.extractor = normalisers.NewDefaultRegistry(describer)

	if aiErr != nil {
		return a, aiErr
	}

	chunk := chunker.NewFromSettings(settings.Chunking, tokenizer.Load(settings.Chunking.Encoding))

	embedder := services.NewResilientEmbedder(aiResult.EmbeddingService, settings.Resilience, aiResult.EmbeddingLimiter)

	indexer, err := services.NewIndexer(chunk, embedder, store, settings.Indexing.Workers)
	if err != nil {
		return a, err
	}
	a.closers = append(a.closers, indexer.Release)

	if settings.Indexing.Titles && aiResult.TitleService != nil {
		titler := services.NewChunkTitler(aiResult.TitleService)
		titler.SetPromptStore(prompts)
		indexer.SetTitler(titler)
	}

	a.ingest = services.NewIngestService(a.extractor, ledger, indexer)
	a.ingest.SetFetcher(fetch.NewHTTPFetcher(fetch.Config{}))

	if url := settings.Dedup.RedisURL; url != "" {
		claims, err := lock.NewRedisLock(ctx, url)
		if err != nil {
			logger.Warn("redis claim lock unavailable, claims are per process: %v", err)
		} else {
			a.onClose("redis", claims.Close)
			a.ingest.SetClaimLock(claims, settings.Dedup.ClaimTTL)
		}
	}

	if aiResult.LLMService == nil {
		return a, fmt.Errorf("%w: %s", domain.ErrLLMUnavailable, strings.Join(aiResult.Warnings, "; "))
	}

	answer, err := services.NewAnswerService(embedder, store, aiResult.LLMService, aiResult.LLMLimiter, settings.Retrieval)
	if err != nil {
		return a, err
	}
	answer.SetPromptStore(prompts)
	a.answer = answer
	a.closers = append(a.closers, answer.Release)

	return a, nil
}

// openStorage opens the vector store and the dedup ledger. The memory
// backend pairs with a memory ledger so the ledger never outlives the
// chunks it vouches for.
func (a *app) openStorage(settings *domain.AppSettings) (driven.VectorStore, driven.DedupLedger, error) {
	switch settings.Storage.Backend {
	case domain.StorageMemory:
		return memory.NewVectorStore(), memory.NewDedupLedger(), nil

	case domain.StoragePGVector:
		if settings.Storage.DSN == "" {
			return nil, nil, errors.New("storage.dsn (or DATABASE_URL) is required for the pgvector backend")
		}
		store, err := pgvector.NewStore(settings.Storage.DSN, settings.Embedding.Dimensions)
		if err != nil {
			return nil, nil, fmt.Errorf("opening pgvector store: %w", err)
		}
		a.onClose("pgvector", store.Close)
		ledger, err := a.openLedger(settings)
		if err != nil {
			return nil, nil, err
		}
		return store, ledger, nil

	default:
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.onClose("sqlite", store.Close)
		ledger, err := a.openLedger(settings)
		if err != nil {
			return nil, nil, err
		}
		return store, ledger, nil
	}
}

func (a *app) openLedger(settings *domain.AppSettings) (driven.DedupLedger, error) {
	ledger, err := badger.Open(settings.Dedup.Path, false)
	if err != nil {
		return nil, fmt.Errorf("opening dedup ledger: %w", err)
	}
	a.onClose("dedup ledger", ledger.Close)
	return ledger, nil
}
