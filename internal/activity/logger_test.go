package activity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := NewLogger(filepath.Join(t.TempDir(), "activity"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecord_WritesJSONLine(t *testing.T) {
	l := newTestLogger(t)
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	err := l.Record(context.Background(), organizer.RenameResult{
		Original:    "/dl/Aavesham.2024.mkv",
		NewPath:     "/lib/Aavesham (2024) {imdb-tt26458038}/Aavesham (2024) {imdb-tt26458038}.mkv",
		Success:     true,
		Outcome:     organizer.StateRenamed,
		Kind:        naming.KindMovie,
		Title:       "Aavesham",
		Year:        2024,
		ProviderTag: "imdb-tt26458038",
		Resolved:    true,
		Confidence:  0.8,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(l.LogDir(), "activity-2024-05-01.jsonl"))
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"outcome":"renamed"`)
	assert.Contains(t, line, `"media_type":"movie"`)
	assert.Contains(t, line, `"provider_tag":"imdb-tt26458038"`)
	assert.NotContains(t, line, `"error"`)
}

func TestEntryFromResult_Failure(t *testing.T) {
	e := EntryFromResult(organizer.RenameResult{
		Original: "/dl/x.mkv",
		Outcome:  organizer.StateFailed,
		Error:    errors.New("permission denied"),
	})
	assert.Equal(t, "failed", e.Outcome)
	assert.Equal(t, "permission denied", e.Error)
	assert.Equal(t, "unknown", e.MediaType)
}

func TestRecentEntries_NewestFirst(t *testing.T) {
	l := newTestLogger(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"one", "two", "three"} {
		l.now = func() time.Time { return day.AddDate(0, 0, i/2) }
		require.NoError(t, l.Log(Entry{Title: title}))
	}
	// malformed lines are skipped
	f, err := os.OpenFile(filepath.Join(l.LogDir(), "activity-2024-05-01.jsonl"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := l.RecentEntries(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "three", entries[0].Title)
	assert.Equal(t, "two", entries[1].Title)
	assert.Equal(t, "one", entries[2].Title)

	entries, err = l.RecentEntries(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPruneOld(t *testing.T) {
	l := newTestLogger(t)
	now := time.Now()

	oldFile := filepath.Join(l.LogDir(), "activity-"+now.AddDate(0, 0, -10).Format(dateLayout)+".jsonl")
	recentFile := filepath.Join(l.LogDir(), "activity-"+now.Format(dateLayout)+".jsonl")
	require.NoError(t, os.WriteFile(oldFile, []byte("{}\n"), 0644))
	require.NoError(t, os.WriteFile(recentFile, []byte("{}\n"), 0644))

	require.NoError(t, l.PruneOld(7))
	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, recentFile)
}
