package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// RetryPolicy controls RetryWithBackoff.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt. It doubles for every
	// further attempt.
	BaseDelay time.Duration
}

// RetryWithBackoff runs fn until it succeeds, fails with a non-retryable
// error, or the attempts are exhausted. The last error is returned together
// with the number of attempts made.
func RetryWithBackoff(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) (int, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if !isRetryable(lastErr) || attempt == attempts {
			return attempt, lastErr
		}

		delay := policy.BaseDelay * time.Duration(1<<(attempt-1))
		logger.Debug("retry: attempt %d/%d failed, waiting %v: %v", attempt, attempts, delay, lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, lastErr
		case <-timer.C:
		}
	}

	return attempts, lastErr
}

// isRetryable reports whether another attempt could succeed. Configuration
// problems and open breakers are permanent for the duration of a call.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrCircuitOpen),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}
