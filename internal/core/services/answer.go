package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
	"github.com/custodia-labs/docqa-cli/internal/ratelimit"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

// answerMaxTokens bounds a single answer.
const answerMaxTokens = 1024

// AnswerService answers batches of questions with retrieval-augmented
// generation. Questions run concurrently on a bounded pool; each answer is
// written to the index of its question, so output order never depends on
// completion order.
type AnswerService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	llm      driven.LLMService
	limiter  *ratelimit.Limiter
	prompts  driven.PromptStore
	topK     int
	timeout  time.Duration
	pool     *ants.Pool
}

// NewAnswerService creates an answer service. The LLM limiter is optional.
func NewAnswerService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	limiter *ratelimit.Limiter,
	cfg domain.RetrievalSettings,
) (*AnswerService, error) {
	pool, err := newPool(cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("create answer pool: %w", err)
	}

	topK := cfg.TopK
	if topK < 1 {
		topK = 3
	}

	return &AnswerService{
		embedder: embedder,
		store:    store,
		llm:      llm,
		limiter:  limiter,
		topK:     topK,
		timeout:  cfg.Timeout,
		pool:     pool,
	}, nil
}

// SetPromptStore sets the store for the answer prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Release stops the worker pool.
func (s *AnswerService) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// AnswerBatch returns one answer per question, in input order.
func (s *AnswerService) AnswerBatch(ctx context.Context, documentID string, questions []string) ([]domain.Answer, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}

	batchCtx, cancelBatch := context.WithCancel(ctx)
	defer cancelBatch()

	answers := make([]domain.Answer, len(questions))
	var wg sync.WaitGroup
	for i, question := range questions {
		submit(s.pool, &wg, func() {
			defer func() {
				if r := recover(); r != nil {
					answers[i] = failedAnswer(i, question, fmt.Errorf("panic: %v", r))
				}
			}()
			answers[i] = s.answer(batchCtx, cancelBatch, documentID, i, question)
		})
	}
	wg.Wait()

	return answers, nil
}

// answer runs retrieval and generation for one question. Failures are
// returned on the Answer. A fatal LLM error cancels the rest of the batch.
func (s *AnswerService) answer(ctx context.Context, cancelBatch context.CancelFunc, documentID string, index int, question string) domain.Answer {
	fail := func(cause error) domain.Answer {
		return failedAnswer(index, question, cause)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if s.llm == nil {
		return fail(domain.ErrLLMUnavailable)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	hits := s.retrieve(ctx, documentID, question)
	system, user := s.buildPrompt(hits, question)

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fail(err)
		}
	}

	text, err := s.llm.Complete(ctx, system, user, driven.CompleteOptions{MaxTokens: answerMaxTokens})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLLMUnavailable):
			cancelBatch()
		case errors.Is(err, domain.ErrRateLimited) && s.limiter != nil:
			s.limiter.Backoff(0)
		}
		return fail(err)
	}

	sources := make([]int, len(hits))
	for i, hit := range hits {
		sources[i] = hit.Chunk.Ordinal
	}

	return domain.Answer{
		Question: question,
		Text:     strings.TrimSpace(text),
		Sources:  sources,
	}
}

// failedAnswer records cause as the answer to the question at index.
func failedAnswer(index int, question string, cause error) domain.Answer {
	genErr := &domain.AnswerGenerationError{Index: index, Question: question, Cause: cause}
	logger.Warn("answer: %v", genErr)
	return domain.Answer{Question: question, Text: genErr.Error(), Err: genErr}
}

// retrieve returns the top-k chunks of documentID for question. Retrieval
// failures are logged and yield no chunks.
func (s *AnswerService) retrieve(ctx context.Context, documentID, question string) []domain.ScoredChunk {
	if s.embedder == nil || s.store == nil {
		logger.Warn("answer: %v", &domain.RetrievalError{DocumentID: documentID, Cause: domain.ErrVectorStoreUnavailable})
		return nil
	}

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil || IsZeroVector(vec) {
		if err == nil {
			err = errors.New("query embedding is empty")
		}
		logger.Warn("answer: %v", &domain.RetrievalError{DocumentID: documentID, Cause: err})
		return nil
	}

	hits, err := s.store.Query(ctx, documentID, vec, s.topK)
	if err != nil {
		logger.Warn("answer: %v", &domain.RetrievalError{DocumentID: documentID, Cause: err})
		return nil
	}

	// Chunks of other documents must never reach the prompt.
	scoped := hits[:0]
	for _, hit := range hits {
		if hit.Chunk.DocumentID == documentID {
			scoped = append(scoped, hit)
		}
	}
	return scoped
}

// buildPrompt assembles the system and user prompts for one question.
func (s *AnswerService) buildPrompt(hits []domain.ScoredChunk, question string) (system, user string) {
	retrieved := NoContext
	if len(hits) > 0 {
		parts := make([]string, len(hits))
		for i, hit := range hits {
			parts[i] = hit.Chunk.Content
		}
		retrieved = strings.Join(parts, chunkSeparator)
	}

	system = loadPrompt(s.prompts, driven.PromptAnswerSystem, defaultAnswerSystemPrompt)

	template := loadPrompt(s.prompts, driven.PromptAnswerUser, defaultAnswerUserPrompt)
	if strings.Count(template, "%s") != 2 {
		logger.Warn("answer: prompt %q needs two %%s placeholders, using built-in", driven.PromptAnswerUser)
		template = defaultAnswerUserPrompt
	}
	user = fmt.Sprintf(template, retrieved, question)

	return system, user
}
