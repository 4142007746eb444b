package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"For All Mankind (2019)", "forallmankind"},
		{"M*A*S*H", "mash"},
		{"Star Trek: Deep Space Nine (1993)", "startrekdeepspacenine"},
		{"It's Always Sunny", "itsalwayssunny"},
		{"Mr. Robot", "mrrobot"},
		{"Aavesham", "aavesham"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTitle(tt.input))
		})
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := Open(path)
	require.NoError(t, err)
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	// Reopening must not re-run anything.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
	assert.Equal(t, ":memory:", db.Path())
}

func movieResult(src, dst string, outcome organizer.State) organizer.RenameResult {
	return organizer.RenameResult{
		Original:    src,
		NewPath:     dst,
		Success:     outcome != organizer.StateFailed,
		Outcome:     outcome,
		Kind:        naming.KindMovie,
		Title:       "Aavesham",
		Year:        2024,
		ProviderTag: "imdb-tt0000001",
		Resolved:    true,
		Confidence:  0.9,
		SidecarPath: "/lib/Aavesham (2024) {imdb-tt0000001}/Aavesham (2024) {imdb-tt0000001}.nfo",
	}
}

func TestRun_RecordAndFinish(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	run, err := db.StartRun(ctx, "organize", false)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	dst := "/lib/Aavesham (2024) {imdb-tt0000001}/Aavesham (2024) {imdb-tt0000001}.mkv"
	require.NoError(t, run.Record(ctx, movieResult("/in/a.mkv", dst, organizer.StateRenamed)))
	require.NoError(t, run.Record(ctx, movieResult(dst, dst, organizer.StateAlreadyNamed)))

	failed := movieResult("/in/b.mkv", dst, organizer.StateFailed)
	failed.Resolved = false
	failed.Error = organizer.ErrTargetExists
	require.NoError(t, run.Record(ctx, failed))

	require.NoError(t, run.Finish(ctx))

	runs, err := db.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, run.ID, r.ID)
	assert.Equal(t, "organize", r.Command)
	assert.False(t, r.DryRun)
	assert.True(t, r.Finished())
	assert.GreaterOrEqual(t, r.Duration(), time.Duration(0))
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 1, r.Renamed)
	assert.Equal(t, 1, r.AlreadyNamed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 2, r.Resolved)

	renames, err := db.RunRenames(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, renames, 3)
	assert.Equal(t, "/in/a.mkv", renames[0].SourcePath)
	assert.Equal(t, "renamed", renames[0].Outcome)
	assert.Equal(t, "movie", renames[0].MediaType)
	assert.Equal(t, 2024, renames[0].Year)
	assert.True(t, renames[0].Resolved)
	assert.InDelta(t, 0.9, renames[0].Confidence, 0.0001)
	assert.Contains(t, renames[0].SidecarPath, ".nfo")
	assert.Equal(t, "failed", renames[2].Outcome)
	assert.Equal(t, organizer.ErrTargetExists.Error(), renames[2].Error)
}

func TestRunRecord_Unfinished(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := db.StartRun(ctx, "watch", true)
	require.NoError(t, err)

	runs, err := db.RecentRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
	assert.False(t, runs[0].Finished())
	assert.Zero(t, runs[0].Duration())
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	first, err := db.StartRun(ctx, "organize", false)
	require.NoError(t, err)
	second, err := db.StartRun(ctx, "organize", false)
	require.NoError(t, err)

	runs, err := db.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.NotEqual(t, first.ID, runs[0].ID)
}

func TestFindRenames_MatchesNormalizedTitle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	run, err := db.StartRun(ctx, "organize", false)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, movieResult("/in/a.mkv", "/lib/a.mkv", organizer.StateRenamed)))

	found, err := db.FindRenames(ctx, "aavesham (2024)", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "/in/a.mkv", found[0].SourcePath)

	found, err = db.FindRenames(ctx, "Something Else", 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestLastMoveTo(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	run, err := db.StartRun(ctx, "organize", false)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, movieResult("/in/a.mkv", "/lib/a.mkv", organizer.StateRenamed)))
	require.NoError(t, run.Record(ctx, movieResult("/in/b.mkv", "/lib/a.mkv", organizer.StateFailed)))

	rec, err := db.LastMoveTo(ctx, "/lib/a.mkv")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "/in/a.mkv", rec.SourcePath)

	rec, err = db.LastMoveTo(ctx, "/lib/missing.mkv")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestOutcomeCounts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	run, err := db.StartRun(ctx, "organize", false)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, movieResult("/in/a.mkv", "/lib/a.mkv", organizer.StateRenamed)))
	require.NoError(t, run.Record(ctx, movieResult("/in/b.mkv", "/lib/b.mkv", organizer.StateRenamed)))
	require.NoError(t, run.Record(ctx, movieResult("/lib/c.mkv", "/lib/c.mkv", organizer.StateAlreadyNamed)))

	counts, err := db.OutcomeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"renamed": 2, "already_named": 1}, counts)
}

func TestPruneRuns_CascadesRenames(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	run, err := db.StartRun(ctx, "organize", false)
	require.NoError(t, err)
	require.NoError(t, run.Record(ctx, movieResult("/in/a.mkv", "/lib/a.mkv", organizer.StateRenamed)))

	n, err := db.PruneRuns(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = db.PruneRuns(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	renames, err := db.RunRenames(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, renames)
}
