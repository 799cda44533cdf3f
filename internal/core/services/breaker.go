package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// BreakerState is the state of a CircuitBreaker.
type BreakerState int

// Circuit breaker states.
const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// String returns the state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast after a run of consecutive failures.
//
// After threshold consecutive failures the breaker opens and Allow returns
// domain.ErrCircuitOpen. Once the cooldown has elapsed a single trial call
// is let through (half-open); its outcome closes or re-opens the breaker.
type CircuitBreaker struct {
	mu        sync.Mutex
	name      string
	threshold int
	cooldown  time.Duration
	state     BreakerState
	failures  int
	openedAt  time.Time
	trial     bool
	now       func() time.Time
}

// NewCircuitBreaker creates a closed breaker. A threshold below one
// disables tripping.
func NewCircuitBreaker(name string, threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return domain.ErrCircuitOpen
		}
		b.state = BreakerHalfOpen
		b.trial = true
		logger.Debug("breaker %s: half-open", b.name)
		return nil
	case BreakerHalfOpen:
		if b.trial {
			return domain.ErrCircuitOpen
		}
		b.trial = true
		return nil
	default:
		return nil
	}
}

// Success records a successful call.
func (b *CircuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != BreakerClosed {
		logger.Info("breaker %s: closed", b.name)
	}
	b.state = BreakerClosed
	b.failures = 0
	b.trial = false
}

// Failure records a failed call.
func (b *CircuitBreaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trial = false
	if b.state == BreakerHalfOpen {
		b.trip()
		return
	}

	b.failures++
	if b.threshold > 0 && b.failures >= b.threshold && b.state == BreakerClosed {
		b.trip()
	}
}

// Abandon records a call its caller gave up on. It counts as neither
// success nor failure but frees a half-open trial slot.
func (b *CircuitBreaker) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false
}

// State returns the current state.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// trip opens the breaker. Callers must hold mu.
func (b *CircuitBreaker) trip() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	logger.Warn("breaker %s: open for %v after %d consecutive failures", b.name, b.cooldown, b.failures)
}
