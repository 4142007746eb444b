package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Retrier re-runs provider calls that end Transient, backing off exponentially between
// attempts. NotFound and Found are returned immediately.
type Retrier struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// MaxRetryAfter caps how long a server Retry-After hint may hold a file.
	MaxRetryAfter time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetrier returns the retry policy used when none is configured.
func DefaultRetrier() Retrier {
	return Retrier{
		Attempts:      3,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		MaxRetryAfter: time.Minute,
	}
}

// Do calls op until it returns a non-transient result or attempts run out. After the
// last failed attempt the result is Transient and its error wraps ErrRetryExhausted.
// An open circuit breaker or a cancelled context ends the loop early.
func (r Retrier) Do(ctx context.Context, op func(ctx context.Context) Result) Result {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last Result
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Transient(err, 0)
		}

		last = op(ctx)
		if last.Status != StatusTransient {
			return last
		}
		if errors.Is(last.Err, ErrCircuitOpen) {
			return last
		}
		if attempt == attempts-1 {
			break
		}

		if err := r.wait(ctx, r.delay(attempt, last.RetryAfter)); err != nil {
			return Transient(err, 0)
		}
	}

	if last.Err != nil {
		return Transient(fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, last.Err), last.RetryAfter)
	}
	return Transient(fmt.Errorf("%w after %d attempts", ErrRetryExhausted, attempts), last.RetryAfter)
}

// delay is BaseDelay·2^attempt capped at MaxDelay, or the server hint when that is longer.
func (r Retrier) delay(attempt int, retryAfter time.Duration) time.Duration {
	d := r.BaseDelay << attempt
	if r.MaxDelay > 0 && (d > r.MaxDelay || d <= 0) {
		d = r.MaxDelay
	}
	if retryAfter > d {
		d = retryAfter
		if r.MaxRetryAfter > 0 && d > r.MaxRetryAfter {
			d = r.MaxRetryAfter
		}
	}
	return d
}

func (r Retrier) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
