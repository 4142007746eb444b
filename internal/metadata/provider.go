// Package metadata resolves parsed filenames to canonical identities through an ordered
// list of metadata providers.
package metadata

import (
	"context"
	"errors"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

var (
	// ErrRetryExhausted wraps the last transient error once every attempt has failed.
	ErrRetryExhausted = errors.New("retries exhausted")
	// ErrCircuitOpen is returned without contacting a provider whose breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// Status tags a provider Result.
type Status int

const (
	StatusNotFound Status = iota
	StatusFound
	StatusTransient
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusTransient:
		return "transient"
	default:
		return "not_found"
	}
}

// Record is one provider's answer, already normalized.
type Record struct {
	ID           naming.ProviderID
	Title        string
	Year         int
	EndYear      int
	Ongoing      bool
	Rating       float64
	EpisodeTitle string
}

// Identity converts the record into the provider-agnostic form.
func (r Record) Identity() naming.ResolvedIdentity {
	return naming.ResolvedIdentity{
		CanonicalTitle: r.Title,
		Year:           r.Year,
		EndYear:        r.EndYear,
		ProviderID:     r.ID,
		EpisodeTitle:   r.EpisodeTitle,
		Ongoing:        r.Ongoing,
		Rating:         r.Rating,
	}
}

// Result is the outcome of a single provider call. Record is set only for StatusFound;
// Err and RetryAfter only for StatusTransient.
type Result struct {
	Status     Status
	Record     *Record
	Err        error
	RetryAfter time.Duration
}

// Found wraps a successful lookup.
func Found(rec Record) Result {
	return Result{Status: StatusFound, Record: &rec}
}

// NotFound is a definitive miss. It is never retried.
func NotFound() Result {
	return Result{Status: StatusNotFound}
}

// Transient is a failure that may succeed later. retryAfter is the server's hint, zero
// when there was none.
func Transient(err error, retryAfter time.Duration) Result {
	return Result{Status: StatusTransient, Err: err, RetryAfter: retryAfter}
}

// Provider is a metadata source. Implementations never return partial records and report
// network, timeout, rate-limit and 5xx failures as Transient.
type Provider interface {
	Name() string
	SearchMovie(ctx context.Context, title string, year int) Result
	SearchSeries(ctx context.Context, title string) Result
	GetEpisode(ctx context.Context, seriesID string, season, episode int) Result
}
