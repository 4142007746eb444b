package metadata

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

func TestResolver_MoviePrimaryWins(t *testing.T) {
	primary := newFake("omdb")
	primary.movie = []Result{Found(Record{ID: imdb("tt1375666"), Title: "Inception", Year: 2010})}
	secondary := newFake("tmdb")

	r := NewResolver(primary, secondary, WithRetrier(instantRetrier(3, nil)))
	id, ok := r.Resolve(context.Background(), naming.Parse("Inception.2010.1080p.mkv"))

	require.True(t, ok)
	assert.Equal(t, "Inception", id.CanonicalTitle)
	assert.Equal(t, 2010, id.Year)
	assert.Equal(t, "imdb-tt1375666", id.ProviderID.Tag())
	assert.Zero(t, secondary.count("movie"))
}

func TestResolver_MovieFallsThroughToSecondary(t *testing.T) {
	primary := newFake("omdb")
	secondary := newFake("tmdb")
	secondary.movie = []Result{Found(Record{ID: tmdb("27205"), Title: "Inception", Year: 2010})}

	r := NewResolver(primary, secondary, WithRetrier(instantRetrier(3, nil)))
	id, ok := r.Resolve(context.Background(), naming.Parse("Inception.2010.1080p.mkv"))

	require.True(t, ok)
	assert.Equal(t, "tmdb-27205", id.ProviderID.Tag())
	assert.Equal(t, 1, primary.count("movie"))
}

func TestResolver_TransientPrimaryThenSecondaryMiss(t *testing.T) {
	primary := newFake("omdb")
	primary.series = []Result{Transient(errors.New("503"), 0)}
	secondary := newFake("tmdb")

	r := NewResolver(primary, secondary, WithRetrier(instantRetrier(3, nil)))
	p := naming.Parse("Some.Obscure.Show.S01E02.720p.HDTV.x264-GRP.mkv")
	id, ok := r.Resolve(context.Background(), p)

	assert.False(t, ok)
	assert.Nil(t, id)
	assert.Equal(t, 3, primary.count("series"))
	assert.Equal(t, 1, secondary.count("series"))

	target := naming.GenerateTarget(p, id)
	assert.Equal(t, "Some Obscure Show - S01E02.mkv", target.Filename)
	assert.NotContains(t, target.Dir, "{")
}

func TestResolver_TransientMissIsNotCached(t *testing.T) {
	primary := newFake("omdb")
	primary.movie = []Result{Transient(errors.New("timeout"), 0)}

	r := NewResolver(primary, nil, WithRetrier(instantRetrier(2, nil)))
	p := naming.Parse("Some.Movie.2019.mkv")

	_, ok := r.Resolve(context.Background(), p)
	assert.False(t, ok)
	_, ok = r.Resolve(context.Background(), p)
	assert.False(t, ok)
	assert.Equal(t, 4, primary.count("movie"))
}

func TestResolver_DefinitiveMissIsCached(t *testing.T) {
	primary := newFake("omdb")
	secondary := newFake("tmdb")

	r := NewResolver(primary, secondary, WithRetrier(instantRetrier(3, nil)))
	p := naming.Parse("Some.Movie.2019.mkv")

	for i := 0; i < 3; i++ {
		_, ok := r.Resolve(context.Background(), p)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, primary.count("movie"))
	assert.Equal(t, 1, secondary.count("movie"))

	stats := r.Stats()
	assert.EqualValues(t, 2, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
}

func TestResolver_CacheKeyIgnoresCaseAndSpacing(t *testing.T) {
	primary := newFake("omdb")
	primary.movie = []Result{Found(Record{ID: imdb("tt1"), Title: "Heat", Year: 1995})}

	r := NewResolver(primary, nil, WithRetrier(instantRetrier(1, nil)))
	_, ok := r.Resolve(context.Background(), naming.ParsedIdentity{Kind: naming.KindMovie, Title: "Heat", Year: 1995})
	require.True(t, ok)
	_, ok = r.Resolve(context.Background(), naming.ParsedIdentity{Kind: naming.KindMovie, Title: "  heat ", Year: 1995})
	require.True(t, ok)
	assert.Equal(t, 1, primary.count("movie"))
}

func TestResolver_SeriesEpisodeTitleFromSecondary(t *testing.T) {
	primary := newFake("omdb")
	primary.series = []Result{Found(Record{ID: imdb("tt0903747"), Title: "Breaking Bad", Year: 2008, EndYear: 2013})}
	secondary := newFake("tmdb")
	secondary.series = []Result{Found(Record{ID: tmdb("1396"), Title: "Breaking Bad", Year: 2008})}
	secondary.episode = []Result{Found(Record{ID: tmdb("1396"), EpisodeTitle: "Felina"})}

	r := NewResolver(primary, secondary, WithRetrier(instantRetrier(3, nil)))
	id, ok := r.Resolve(context.Background(), naming.Parse("Breaking.Bad.S05E16.720p.mkv"))

	require.True(t, ok)
	assert.Equal(t, "imdb-tt0903747", id.ProviderID.Tag())
	assert.Equal(t, "2008-2013", id.YearRange())
	assert.Equal(t, "Felina", id.EpisodeTitle)
	assert.Equal(t, []string{"1396"}, secondary.episodes)
	assert.Zero(t, primary.count("episode"))
}

func TestResolver_SeriesSecondaryOutageIsNotCached(t *testing.T) {
	primary := newFake("omdb")
	primary.series = []Result{Found(Record{ID: imdb("tt0903747"), Title: "Breaking Bad", Year: 2008})}
	secondary := newFake("tmdb")
	secondary.series = []Result{
		Transient(errors.New("timeout"), 0),
		Found(Record{ID: tmdb("1396"), Title: "Breaking Bad", Year: 2008}),
	}
	secondary.episode = []Result{Found(Record{ID: tmdb("1396"), EpisodeTitle: "Felina"})}

	r := NewResolver(primary, secondary, WithRetrier(instantRetrier(1, nil)))

	id, ok := r.Resolve(context.Background(), naming.Parse("Breaking.Bad.S05E14.720p.mkv"))
	require.True(t, ok)
	assert.Equal(t, "imdb-tt0903747", id.ProviderID.Tag())
	assert.Empty(t, id.EpisodeTitle)

	id, ok = r.Resolve(context.Background(), naming.Parse("Breaking.Bad.S05E16.720p.mkv"))
	require.True(t, ok)
	assert.Equal(t, "Felina", id.EpisodeTitle)
	assert.Equal(t, 2, primary.count("series"))
	assert.Equal(t, 2, secondary.count("series"))
	assert.Equal(t, []string{"1396"}, secondary.episodes)
}

func TestResolver_SeriesEpisodeTitleFallsBackToPrimary(t *testing.T) {
	primary := newFake("omdb")
	primary.series = []Result{Found(Record{ID: imdb("tt0903747"), Title: "Breaking Bad", Year: 2008})}
	primary.episode = []Result{Found(Record{ID: imdb("tt2301451"), EpisodeTitle: "Ozymandias"})}

	r := NewResolver(primary, nil, WithRetrier(instantRetrier(3, nil)))
	id, ok := r.Resolve(context.Background(), naming.Parse("Breaking.Bad.S05E14.720p.mkv"))

	require.True(t, ok)
	assert.Equal(t, "Ozymandias", id.EpisodeTitle)
	assert.Equal(t, []string{"tt0903747"}, primary.episodes)
}

func TestResolver_MissingEpisodeTitleIsFine(t *testing.T) {
	primary := newFake("omdb")
	primary.series = []Result{Found(Record{ID: imdb("tt1"), Title: "Show", Year: 2020})}
	primary.episode = []Result{Transient(errors.New("down"), 0)}

	r := NewResolver(primary, nil, WithRetrier(instantRetrier(2, nil)))
	id, ok := r.Resolve(context.Background(), naming.Parse("Show.S01E01.mkv"))

	require.True(t, ok)
	assert.Empty(t, id.EpisodeTitle)
}

func TestResolver_SeriesPrimaryMissUsesSecondary(t *testing.T) {
	primary := newFake("omdb")
	secondary := newFake("tmdb")
	secondary.series = []Result{Found(Record{ID: tmdb("42"), Title: "Show", Year: 2019, Ongoing: true})}
	secondary.episode = []Result{Found(Record{ID: tmdb("42"), EpisodeTitle: "Pilot"})}

	r := NewResolver(primary, secondary, WithRetrier(instantRetrier(3, nil)))
	id, ok := r.Resolve(context.Background(), naming.Parse("Show.S01E01.mkv"))

	require.True(t, ok)
	assert.Equal(t, "tmdb-42", id.ProviderID.Tag())
	assert.Equal(t, "Pilot", id.EpisodeTitle)
	assert.Equal(t, "2019-", id.YearRange())
}

func TestResolver_UnknownIsNeverResolved(t *testing.T) {
	primary := newFake("omdb")
	r := NewResolver(primary, nil)

	_, ok := r.Resolve(context.Background(), naming.Parse("Random.Video.File.mkv"))
	assert.False(t, ok)
	assert.Zero(t, primary.count("movie"))
	assert.Zero(t, primary.count("series"))
}

func TestResolver_NoProviders(t *testing.T) {
	r := NewResolver(nil, nil)
	assert.False(t, r.Enabled())

	_, ok := r.Resolve(context.Background(), naming.Parse("Inception.2010.mkv"))
	assert.False(t, ok)
	_, ok = r.Resolve(context.Background(), naming.Parse("Show.S01E01.mkv"))
	assert.False(t, ok)
}

func TestResolver_ConcurrentLookupsShareOneCall(t *testing.T) {
	primary := newFake("omdb")
	primary.movie = []Result{Found(Record{ID: imdb("tt1"), Title: "Heat", Year: 1995})}
	r := NewResolver(primary, nil, WithRetrier(instantRetrier(1, nil)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ok := r.Resolve(context.Background(), naming.Parse("Heat.1995.mkv"))
			assert.True(t, ok)
			assert.Equal(t, "Heat", id.CanonicalTitle)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, primary.count("movie"))
}
