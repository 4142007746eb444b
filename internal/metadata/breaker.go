package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation
	CircuitOpen                         // Rejecting requests
	CircuitHalfOpen                     // Testing recovery
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker opens after threshold failures within window and lets a probe through
// once cooldown has passed.
type CircuitBreaker struct {
	mu sync.Mutex

	state     CircuitState
	failures  []time.Time
	openedAt  time.Time
	lastError string

	failureThreshold int
	failureWindow    time.Duration
	cooldownPeriod   time.Duration

	now func() time.Time
}

func NewCircuitBreaker(threshold int, window, cooldown time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{
		state:            CircuitClosed,
		failures:         make([]time.Time, 0, threshold),
		failureThreshold: threshold,
		failureWindow:    window,
		cooldownPeriod:   cooldown,
		now:              time.Now,
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Allow reports whether a call may proceed, moving an expired open breaker to half-open.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) >= cb.cooldownPeriod {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

func (cb *CircuitBreaker) RecordFailure(errMsg string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	cb.lastError = errMsg

	// A failed probe reopens immediately.
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
		cb.openedAt = now
		return
	}

	cutoff := now.Add(-cb.failureWindow)
	recent := cb.failures[:0]
	for _, t := range cb.failures {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	cb.failures = append(recent, now)

	if len(cb.failures) >= cb.failureThreshold {
		cb.state = CircuitOpen
		cb.openedAt = now
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitClosed
	cb.failures = cb.failures[:0]
	cb.lastError = ""
}

func (cb *CircuitBreaker) LastError() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.lastError
}

func (cb *CircuitBreaker) CooldownRemaining() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return 0
	}
	remaining := cb.cooldownPeriod - cb.now().Sub(cb.openedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Guard wraps p so calls are short-circuited while cb is open. Only Transient results
// count as failures; a miss is a healthy answer.
func Guard(p Provider, cb *CircuitBreaker) Provider {
	return &guarded{next: p, cb: cb}
}

type guarded struct {
	next Provider
	cb   *CircuitBreaker
}

func (g *guarded) Name() string { return g.next.Name() }

func (g *guarded) SearchMovie(ctx context.Context, title string, year int) Result {
	return g.call(func() Result { return g.next.SearchMovie(ctx, title, year) })
}

func (g *guarded) SearchSeries(ctx context.Context, title string) Result {
	return g.call(func() Result { return g.next.SearchSeries(ctx, title) })
}

func (g *guarded) GetEpisode(ctx context.Context, seriesID string, season, episode int) Result {
	return g.call(func() Result { return g.next.GetEpisode(ctx, seriesID, season, episode) })
}

func (g *guarded) call(fn func() Result) Result {
	if !g.cb.Allow() {
		return Transient(fmt.Errorf("%s: %w", g.next.Name(), ErrCircuitOpen), g.cb.CooldownRemaining())
	}
	res := fn()
	if res.Status == StatusTransient {
		msg := "transient failure"
		if res.Err != nil {
			msg = res.Err.Error()
		}
		g.cb.RecordFailure(msg)
	} else {
		g.cb.RecordSuccess()
	}
	return res
}
