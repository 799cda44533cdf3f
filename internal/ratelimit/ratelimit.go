// Package ratelimit throttles calls to external AI collaborators.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Collaborator identifies an external service for rate limiting purposes.
type Collaborator string

const (
	// CollaboratorEmbedding is the embedding API.
	CollaboratorEmbedding Collaborator = "embedding"
	// CollaboratorLLM is the chat completion API.
	CollaboratorLLM Collaborator = "llm"
	// CollaboratorVision is the image description API.
	CollaboratorVision Collaborator = "vision"
)

// Config holds rate limiting configuration for a collaborator.
type Config struct {
	// RequestsPerSecond is the sustained rate limit. Zero disables limiting.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// Collaborator names the throttled service in log output.
	Collaborator Collaborator
}

// DefaultLimits are conservative defaults sized for free-tier Gemini quotas.
var DefaultLimits = map[Collaborator]Config{
	CollaboratorEmbedding: {RequestsPerSecond: 5.0, BurstSize: 5},
	CollaboratorLLM:       {RequestsPerSecond: 2.0, BurstSize: 4},
	CollaboratorVision:    {RequestsPerSecond: 1.0, BurstSize: 2},
}

// defaultBackoff applies when a 429 carries no Retry-After hint.
const defaultBackoff = 30 * time.Second

// Limiter is a token bucket with an additional backoff window set after
// the collaborator reports a rate limit.
type Limiter struct {
	mu           sync.Mutex
	limiter      *rate.Limiter
	retryAt      time.Time
	collaborator Collaborator
}

// New creates a limiter with the default limits for the collaborator.
func New(c Collaborator) *Limiter {
	cfg, ok := DefaultLimits[c]
	if !ok {
		cfg = Config{RequestsPerSecond: 5.0, BurstSize: 5}
	}
	cfg.Collaborator = c
	return NewWithConfig(cfg)
}

// NewWithConfig creates a limiter with custom configuration.
func NewWithConfig(cfg Config) *Limiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter:      rate.NewLimiter(limit, burst),
		collaborator: cfg.Collaborator,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by Backoff.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Backoff pauses all callers for d. A non-positive d uses the default
// backoff. An earlier deadline never shortens an existing one.
func (l *Limiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = defaultBackoff
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if until := time.Now().Add(d); until.After(l.retryAt) {
		l.retryAt = until
		logger.Warn("ratelimit: %s rate limited, pausing requests for %v", l.name(), d)
	}
}

func (l *Limiter) name() string {
	if l.collaborator == "" {
		return "collaborator"
	}
	return string(l.collaborator)
}
