package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

// OutcomeLabel is the styled short form of a file outcome.
func OutcomeLabel(s organizer.State, dryRun bool) string {
	switch s {
	case organizer.StateRenamed:
		if dryRun {
			return Info("would rename")
		}
		return Success("renamed")
	case organizer.StateAlreadyNamed:
		return Dim("ok")
	case organizer.StateFailed:
		return Error("failed")
	default:
		return s.String()
	}
}

// KindLabel colors the media kind.
func KindLabel(k naming.MediaKind) string {
	switch k {
	case naming.KindMovie:
		return Movie(k.String())
	case naming.KindSeries:
		return Series(k.String())
	default:
		return Dim(k.String())
	}
}

// RenderResults prints one row per file. Already-named files are listed only when verbose.
func RenderResults(w io.Writer, results []organizer.RenameResult, verbose bool) {
	t := NewTable("Result", "Kind", "File", "Target / Error")
	for _, r := range results {
		if r.Outcome == organizer.StateAlreadyNamed && !verbose {
			continue
		}
		detail := r.NewPath
		if r.Outcome == organizer.StateFailed {
			detail = Error(r.ErrorString())
		}
		t.AddRow(OutcomeLabel(r.Outcome, r.DryRun), KindLabel(r.Kind), filepath.Base(r.Original), detail)
	}
	if t.Len() == 0 {
		return
	}
	t.Render(w)
}

// RenderSummary prints the batch totals.
func RenderSummary(w io.Writer, s organizer.Summary, elapsed time.Duration, dryRun bool) {
	verb := "Renamed"
	if dryRun {
		verb = "Would rename"
	}
	fmt.Fprintf(w, "%s %s, %s already named, %s failed, %s resolved online (%s files in %s)\n",
		verb, Success(FormatCount(int64(s.Renamed))),
		FormatCount(int64(s.AlreadyNamed)),
		failedCount(s.Failed),
		FormatCount(int64(s.Resolved)),
		FormatCount(int64(s.Total)),
		FormatDuration(elapsed))
}

func failedCount(n int) string {
	if n == 0 {
		return "0"
	}
	return Error(FormatCount(int64(n)))
}

// RenderParsed prints what was read from a filename and where it would go offline.
func RenderParsed(w io.Writer, p naming.ParsedIdentity, target naming.Target) {
	fmt.Fprintln(w, Path(p.Original))
	rows := [][]string{
		{"kind", KindLabel(p.Kind)},
		{"pattern", p.Pattern},
		{"confidence", fmt.Sprintf("%.2f", p.Confidence)},
		{"title", p.Title},
	}
	add := func(k, v string) {
		if v != "" {
			rows = append(rows, []string{k, v})
		}
	}
	if p.Year > 0 {
		add("year", fmt.Sprint(p.Year))
	}
	if p.Kind == naming.KindSeries {
		add("episode", fmt.Sprintf("S%02dE%02d", p.Season, p.Episode))
	}
	add("episode title", p.EpisodeTitle)
	add("quality", p.Quality)
	add("source", p.Source)
	add("codec", p.Codec)
	add("group", p.ReleaseGroup)
	add("language", p.Language)
	add("provider", p.ProviderTag.Tag())
	add("target", filepath.Join(target.Dir, target.Filename))

	for _, row := range rows {
		fmt.Fprintf(w, "  %-14s %s\n", row[0]+":", row[1])
	}
}
