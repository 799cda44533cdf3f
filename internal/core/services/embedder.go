package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
	"github.com/custodia-labs/docqa-cli/internal/ratelimit"
)

// Ensure ResilientEmbedder implements the interface.
var _ driven.EmbeddingService = (*ResilientEmbedder)(nil)

// ResilientEmbedder decorates an EmbeddingService with rate limiting,
// per-attempt timeouts, retry with exponential backoff and a circuit breaker.
//
// When no valid vector can be produced, Embed returns the zero vector of the
// configured dimension together with an *domain.EmbeddingError. Callers
// treat such results as degraded.
type ResilientEmbedder struct {
	inner       driven.EmbeddingService
	limiter     *ratelimit.Limiter
	breaker     *CircuitBreaker
	policy      RetryPolicy
	callTimeout time.Duration
}

// NewResilientEmbedder wraps inner. The limiter is optional.
func NewResilientEmbedder(inner driven.EmbeddingService, cfg domain.ResilienceSettings, limiter *ratelimit.Limiter) *ResilientEmbedder {
	return &ResilientEmbedder{
		inner:       inner,
		limiter:     limiter,
		breaker:     NewCircuitBreaker("embedding", cfg.BreakerThreshold, cfg.BreakerCooldown),
		policy:      RetryPolicy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay},
		callTimeout: cfg.CallTimeout,
	}
}

// Embed returns the vector for text, or the zero vector and an
// *domain.EmbeddingError after persistent failure.
func (e *ResilientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.inner == nil {
		return e.ZeroVector(), &domain.EmbeddingError{Cause: domain.ErrEmbeddingUnavailable}
	}

	var vec []float32
	attempts, err := RetryWithBackoff(ctx, e.policy, func(ctx context.Context) error {
		v, err := e.attempt(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		logger.Debug("embedding: degraded after %d attempt(s): %v", attempts, err)
		return e.ZeroVector(), &domain.EmbeddingError{Attempts: attempts, Cause: err}
	}

	return vec, nil
}

// attempt is one guarded call to the wrapped service.
func (e *ResilientEmbedder) attempt(ctx context.Context, text string) ([]float32, error) {
	if err := e.breaker.Allow(); err != nil {
		return nil, err
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			e.breaker.Abandon()
			return nil, err
		}
	}

	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	vec, err := e.inner.Embed(callCtx, text)
	if err == nil {
		err = e.validate(vec)
	}
	if err != nil {
		// The caller cancelling or running out of time says nothing about
		// the provider. Only the per-attempt timeout counts against it.
		if ctx.Err() != nil {
			e.breaker.Abandon()
			return nil, err
		}
		if errors.Is(err, domain.ErrRateLimited) && e.limiter != nil {
			e.limiter.Backoff(2 * e.policy.BaseDelay)
		}
		e.breaker.Failure()
		return nil, err
	}

	e.breaker.Success()
	return vec, nil
}

// validate rejects vectors that cannot be compared with the rest of the index.
func (e *ResilientEmbedder) validate(vec []float32) error {
	if want := e.Dimensions(); want > 0 && len(vec) != want {
		return fmt.Errorf("embedding has %d dimensions, want %d", len(vec), want)
	}
	if IsZeroVector(vec) {
		return errors.New("embedding is empty")
	}
	return nil
}

// EmbedBatch embeds each text independently. Every position of the result
// holds a vector; failed positions hold the zero vector and the returned
// error joins their *domain.EmbeddingError values.
func (e *ResilientEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var errs []error
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		out[i] = vec
		if err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

// ZeroVector returns the degraded-embedding sentinel.
func (e *ResilientEmbedder) ZeroVector() []float32 {
	return make([]float32, e.Dimensions())
}

// Dimensions returns the dimension of the wrapped service.
func (e *ResilientEmbedder) Dimensions() int {
	if e.inner == nil {
		return 0
	}
	return e.inner.Dimensions()
}

// ModelName returns the wrapped model name.
func (e *ResilientEmbedder) ModelName() string {
	if e.inner == nil {
		return ""
	}
	return e.inner.ModelName()
}

// Ping checks the wrapped service directly, bypassing the breaker.
func (e *ResilientEmbedder) Ping(ctx context.Context) error {
	if e.inner == nil {
		return domain.ErrEmbeddingUnavailable
	}
	return e.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (e *ResilientEmbedder) Close() error {
	if e.inner == nil {
		return nil
	}
	return e.inner.Close()
}

// IsZeroVector reports whether vec has no non-zero component.
func IsZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
