package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

// fakeProvider replays scripted results; the last result of each script repeats.
type fakeProvider struct {
	name string

	mu       sync.Mutex
	movie    []Result
	series   []Result
	episode  []Result
	calls    map[string]int
	episodes []string
}

func newFake(name string) *fakeProvider {
	return &fakeProvider{name: name, calls: map[string]int{}}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) SearchMovie(ctx context.Context, title string, year int) Result {
	return f.next("movie", f.movie)
}

func (f *fakeProvider) SearchSeries(ctx context.Context, title string) Result {
	return f.next("series", f.series)
}

func (f *fakeProvider) GetEpisode(ctx context.Context, seriesID string, season, episode int) Result {
	f.mu.Lock()
	f.episodes = append(f.episodes, seriesID)
	f.mu.Unlock()
	return f.next("episode", f.episode)
}

func (f *fakeProvider) next(op string, script []Result) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.calls[op]
	f.calls[op]++
	if len(script) == 0 {
		return NotFound()
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	return script[n]
}

func (f *fakeProvider) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func imdb(id string) naming.ProviderID {
	return naming.ProviderID{Kind: naming.ProviderIMDb, ID: id}
}

func tmdb(id string) naming.ProviderID {
	return naming.ProviderID{Kind: naming.ProviderTMDB, ID: id}
}

// instantRetrier records requested delays instead of sleeping.
func instantRetrier(attempts int, delays *[]time.Duration) Retrier {
	r := DefaultRetrier()
	r.Attempts = attempts
	r.sleep = func(ctx context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d)
		}
		return ctx.Err()
	}
	return r
}
