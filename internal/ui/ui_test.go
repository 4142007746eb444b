package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

func init() {
	DisableColors()
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "850ms", FormatDuration(850*time.Millisecond))
	assert.Equal(t, "4.2s", FormatDuration(4200*time.Millisecond))
	assert.Equal(t, "3.0m", FormatDuration(3*time.Minute))
	assert.Equal(t, "1.5h", FormatDuration(90*time.Minute))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1.0 kB", FormatBytes(1000))
	assert.Equal(t, "0 B", FormatBytes(-5))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "-", FormatAgo(time.Time{}))
	assert.Contains(t, FormatAgo(time.Now().Add(-3*time.Hour)), "ago")
}

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("A", "Name")
	tbl.AddRow("1", "short")
	tbl.AddRow("22")
	tbl.Render(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "┌────┬───────┐", lines[0])
	assert.Equal(t, "│ A  │ Name  │", lines[1])
	assert.Equal(t, "│ 1  │ short │", lines[3])
	assert.Equal(t, "│ 22 │       │", lines[4])
	assert.Equal(t, "└────┴───────┘", lines[5])
}

func TestTable_TruncatesToMaxWidth(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("Name")
	tbl.SetMaxWidth(20)
	tbl.AddRow(strings.Repeat("x", 50))
	tbl.Render(&buf)

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 21)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestCompactTable(t *testing.T) {
	var buf bytes.Buffer
	CompactTable(&buf, []string{"ID", "Cmd"}, [][]string{{"1", "organize"}})
	assert.Equal(t, "ID  Cmd\n──  ────────\n1   organize\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, 2, "Organizing")

	require.NoError(t, p.Record(context.Background(), organizer.RenameResult{}))
	p.Increment()
	p.Increment()

	assert.Equal(t, 2, p.Current())
	assert.Contains(t, buf.String(), "Organizing: 2/2 (100.0%)")
}

func TestRenderResults(t *testing.T) {
	results := []organizer.RenameResult{
		{Original: "/dl/a.mkv", NewPath: "/lib/A (2020).mkv", Outcome: organizer.StateRenamed, Kind: naming.KindMovie},
		{Original: "/lib/b.mkv", NewPath: "/lib/b.mkv", Outcome: organizer.StateAlreadyNamed, Kind: naming.KindMovie},
		{Original: "/dl/c.mkv", Outcome: organizer.StateFailed, Error: errors.New("disk full")},
	}

	var buf bytes.Buffer
	RenderResults(&buf, results, false)
	out := buf.String()
	assert.Contains(t, out, "renamed")
	assert.Contains(t, out, "disk full")
	assert.NotContains(t, out, "b.mkv")

	buf.Reset()
	RenderResults(&buf, results, true)
	assert.Contains(t, buf.String(), "b.mkv")
}

func TestRenderResults_DryRunLabel(t *testing.T) {
	var buf bytes.Buffer
	RenderResults(&buf, []organizer.RenameResult{
		{Original: "/dl/a.mkv", NewPath: "/lib/a.mkv", Outcome: organizer.StateRenamed, DryRun: true},
	}, false)
	assert.Contains(t, buf.String(), "would rename")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, organizer.Summary{Total: 4, Renamed: 2, AlreadyNamed: 1, Failed: 1, Resolved: 2}, 2*time.Second, false)
	assert.Equal(t, "Renamed 2, 1 already named, 1 failed, 2 resolved online (4 files in 2.0s)\n", buf.String())
}

func TestRenderParsed(t *testing.T) {
	p := naming.Parse("Breaking.Bad.S05E16.Felina.1080p.WEB-DL.DD5.1.H.264-NTb.mkv")
	var buf bytes.Buffer
	RenderParsed(&buf, p, naming.GenerateTarget(p, nil))

	out := buf.String()
	assert.Contains(t, out, "series")
	assert.Contains(t, out, "S05E16")
	assert.Contains(t, out, "Breaking Bad - S05E16 - Felina.mkv")
}
