package metadata

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limit wraps p with a token bucket of perSecond requests and the given burst. A
// non-positive perSecond disables limiting.
func Limit(p Provider, perSecond float64, burst int) Provider {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &limited{next: p, limiter: rate.NewLimiter(limit, burst)}
}

type limited struct {
	next    Provider
	limiter *rate.Limiter
}

func (l *limited) Name() string { return l.next.Name() }

func (l *limited) SearchMovie(ctx context.Context, title string, year int) Result {
	if res, ok := l.wait(ctx); !ok {
		return res
	}
	return l.next.SearchMovie(ctx, title, year)
}

func (l *limited) SearchSeries(ctx context.Context, title string) Result {
	if res, ok := l.wait(ctx); !ok {
		return res
	}
	return l.next.SearchSeries(ctx, title)
}

func (l *limited) GetEpisode(ctx context.Context, seriesID string, season, episode int) Result {
	if res, ok := l.wait(ctx); !ok {
		return res
	}
	return l.next.GetEpisode(ctx, seriesID, season, episode)
}

func (l *limited) wait(ctx context.Context) (Result, bool) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Transient(fmt.Errorf("%s rate limit: %w", l.next.Name(), err), 0), false
	}
	return Result{}, true
}
