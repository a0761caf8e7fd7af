package backend

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a CircuitBreaker.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // Normal operation
	BreakerOpen                         // Calls fail fast
	BreakerHalfOpen                     // Probing whether the backend recovered
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling the records backend after repeated failures
// and lets a few trial calls through once the cooldown has passed. Only errors
// accepted by the trip predicate count as failures, so a 404 for a missing
// record never opens the circuit.
type CircuitBreaker struct {
	maxFailures      int
	cooldown         time.Duration
	successThreshold int
	trip             func(error) bool
	now              func() time.Time

	mu              sync.Mutex
	state           BreakerState
	failures        int
	successes       int
	lastStateChange time.Time
}

// NewCircuitBreaker opens after maxFailures consecutive failures and stays
// open for cooldown. A nil trip predicate counts every error.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration, trip func(error) bool) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	if trip == nil {
		trip = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{
		maxFailures:      maxFailures,
		cooldown:         cooldown,
		successThreshold: 2,
		trip:             trip,
		now:              time.Now,
		state:            BreakerClosed,
	}
}

// Execute runs fn unless the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn()

	// A cancelled caller says nothing about the backend's health.
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil && cb.trip(err) {
		cb.failures++
		cb.successes = 0
		if cb.state == BreakerHalfOpen || cb.failures >= cb.maxFailures {
			cb.setState(BreakerOpen)
		}
		return err
	}

	cb.failures = 0
	if cb.state == BreakerHalfOpen {
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.setState(BreakerClosed)
		}
	}
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != BreakerOpen {
		return nil
	}
	if cb.now().Sub(cb.lastStateChange) < cb.cooldown {
		return ErrCircuitOpen
	}
	cb.setState(BreakerHalfOpen)
	return nil
}

func (cb *CircuitBreaker) setState(s BreakerState) {
	cb.state = s
	cb.successes = 0
	if s == BreakerClosed {
		cb.failures = 0
	}
	cb.lastStateChange = cb.now()
}

// State returns the current state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(BreakerClosed)
}
