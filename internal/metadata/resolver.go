package metadata

import (
	"context"
	"fmt"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/logging"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

// Resolver walks the provider ladder for a parsed file. The primary provider is asked
// first, the secondary only when the primary has no answer. The first non-empty answer
// is trusted as-is.
type Resolver struct {
	primary   Provider
	secondary Provider
	retrier   Retrier
	logger    *logging.Logger

	movies   *Cache[naming.ResolvedIdentity]
	series   *Cache[seriesMatch]
	episodes *Cache[string]
}

// seriesMatch remembers which provider can answer episode lookups for a series.
type seriesMatch struct {
	identity      naming.ResolvedIdentity
	episodeSource Provider
	episodeID     string
	fallback      Provider
	fallbackID    string
}

type ResolverOption func(*Resolver)

func WithRetrier(r Retrier) ResolverOption {
	return func(res *Resolver) {
		res.retrier = r
	}
}

func WithLogger(l *logging.Logger) ResolverOption {
	return func(res *Resolver) {
		if l != nil {
			res.logger = l
		}
	}
}

// NewResolver builds a resolver. Either provider may be nil when it is not configured.
func NewResolver(primary, secondary Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		primary:   primary,
		secondary: secondary,
		retrier:   DefaultRetrier(),
		logger:    logging.Nop(),
		movies:    NewCache[naming.ResolvedIdentity](),
		series:    NewCache[seriesMatch](),
		episodes:  NewCache[string](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether any provider is configured.
func (r *Resolver) Enabled() bool {
	return r.primary != nil || r.secondary != nil
}

// Resolve returns a complete identity or (nil, false). Unknown kinds are never looked up.
// Provider outages are logged and treated as misses.
func (r *Resolver) Resolve(ctx context.Context, p naming.ParsedIdentity) (*naming.ResolvedIdentity, bool) {
	switch p.Kind {
	case naming.KindMovie:
		return r.resolveMovie(ctx, p)
	case naming.KindSeries:
		return r.resolveSeries(ctx, p)
	default:
		return nil, false
	}
}

func (r *Resolver) resolveMovie(ctx context.Context, p naming.ParsedIdentity) (*naming.ResolvedIdentity, bool) {
	key := CacheKey(p.Title, naming.KindMovie, p.Year)
	id, found := r.movies.Do(key, func() (naming.ResolvedIdentity, bool, bool) {
		definitive := true
		for _, prov := range r.providers() {
			res := r.retrier.Do(ctx, func(ctx context.Context) Result {
				return prov.SearchMovie(ctx, p.Title, p.Year)
			})
			if rec, ok := r.accept(prov, res, "search_movie", p.Title, &definitive); ok {
				return rec.Identity(), true, true
			}
		}
		return naming.ResolvedIdentity{}, false, definitive && ctx.Err() == nil
	})
	if !found {
		return nil, false
	}
	return &id, true
}

func (r *Resolver) resolveSeries(ctx context.Context, p naming.ParsedIdentity) (*naming.ResolvedIdentity, bool) {
	key := CacheKey(p.Title, naming.KindSeries, p.Season)
	match, found := r.series.Do(key, func() (seriesMatch, bool, bool) {
		return r.lookupSeries(ctx, p.Title)
	})
	if !found {
		return nil, false
	}

	id := match.identity
	id.EpisodeTitle = r.episodeTitle(ctx, p, match)
	return &id, true
}

func (r *Resolver) lookupSeries(ctx context.Context, title string) (seriesMatch, bool, bool) {
	definitive := true
	search := func(prov Provider) (*Record, bool) {
		if prov == nil {
			return nil, false
		}
		res := r.retrier.Do(ctx, func(ctx context.Context) Result {
			return prov.SearchSeries(ctx, title)
		})
		return r.accept(prov, res, "search_series", title, &definitive)
	}

	if rec, ok := search(r.primary); ok {
		m := seriesMatch{identity: rec.Identity(), fallback: r.primary, fallbackID: rec.ID.ID}
		// Episode titles come from the secondary source when it knows the series.
		if sec, ok := search(r.secondary); ok {
			m.episodeSource, m.episodeID = r.secondary, sec.ID.ID
		}
		// A secondary outage is retried by the next file of the series.
		return m, true, definitive
	}
	if rec, ok := search(r.secondary); ok {
		return seriesMatch{identity: rec.Identity(), episodeSource: r.secondary, episodeID: rec.ID.ID}, true, definitive
	}
	return seriesMatch{}, false, definitive && ctx.Err() == nil
}

// episodeTitle is best-effort: absence never fails the resolution.
func (r *Resolver) episodeTitle(ctx context.Context, p naming.ParsedIdentity, m seriesMatch) string {
	key := fmt.Sprintf("%s|e%d", CacheKey(p.Title, naming.KindSeries, p.Season), p.Episode)
	title, _ := r.episodes.Do(key, func() (string, bool, bool) {
		definitive := true
		sources := []struct {
			prov Provider
			id   string
		}{
			{m.episodeSource, m.episodeID},
			{m.fallback, m.fallbackID},
		}
		for _, s := range sources {
			if s.prov == nil || s.id == "" {
				continue
			}
			res := r.retrier.Do(ctx, func(ctx context.Context) Result {
				return s.prov.GetEpisode(ctx, s.id, p.Season, p.Episode)
			})
			if rec, ok := r.accept(s.prov, res, "get_episode", p.Title, &definitive); ok && rec.EpisodeTitle != "" {
				return rec.EpisodeTitle, true, true
			}
		}
		return "", false, definitive && ctx.Err() == nil
	})
	return title
}

func (r *Resolver) providers() []Provider {
	out := make([]Provider, 0, 2)
	if r.primary != nil {
		out = append(out, r.primary)
	}
	if r.secondary != nil {
		out = append(out, r.secondary)
	}
	return out
}

// accept returns the record of a Found result. Transient results are logged and clear
// definitive so the miss is not cached.
func (r *Resolver) accept(prov Provider, res Result, op, title string, definitive *bool) (*Record, bool) {
	switch res.Status {
	case StatusFound:
		if res.Record == nil || res.Record.ID.IsZero() {
			return nil, false
		}
		r.logger.Debug("resolver", "provider match",
			logging.F("provider", prov.Name()),
			logging.F("op", op),
			logging.F("title", title),
			logging.F("id", res.Record.ID.Tag()))
		return res.Record, true
	case StatusTransient:
		*definitive = false
		r.logger.Warn("resolver", "provider unavailable, treating as miss",
			logging.F("provider", prov.Name()),
			logging.F("op", op),
			logging.F("title", title),
			logging.F("error", res.Err))
		return nil, false
	default:
		return nil, false
	}
}

// Stats aggregates cache counters over movie, series and episode lookups.
func (r *Resolver) Stats() CacheStats {
	var total CacheStats
	for _, s := range []CacheStats{r.movies.Stats(), r.series.Stats(), r.episodes.Stats()} {
		total.Hits += s.Hits
		total.Misses += s.Misses
		total.Entries += s.Entries
	}
	return total
}
