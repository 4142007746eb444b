package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GenerateTarget builds the library filename and directory for a parsed file. When r is
// nil, or the kind is unknown, only locally parsed fields are used. Every component is
// sanitized.
func GenerateTarget(p ParsedIdentity, r *ResolvedIdentity) Target {
	if r != nil && !r.ProviderID.IsZero() {
		switch p.Kind {
		case KindMovie:
			return movieTarget(p, r.CanonicalTitle, yearOr(r.Year, p.Year), r.ProviderID, true)
		case KindSeries:
			episodeTitle := r.EpisodeTitle
			if episodeTitle == "" {
				episodeTitle = p.EpisodeTitle
			}
			return seriesTarget(p, r.CanonicalTitle, yearOr(r.Year, p.Year), r.ProviderID, episodeTitle)
		}
	}
	return fallbackTarget(p)
}

func fallbackTarget(p ParsedIdentity) Target {
	title := FallbackTitle(p.Title)
	switch p.Kind {
	case KindMovie:
		return movieTarget(p, title, p.Year, p.ProviderTag, false)
	case KindSeries:
		return seriesTarget(p, title, p.Year, p.ProviderTag, p.EpisodeTitle)
	default:
		return Target{Filename: SanitizeFilename(title, p.Ext)}
	}
}

// movieTarget: "Title (Year) {tag}/Title (Year) {tag}.ext".
func movieTarget(p ParsedIdentity, title string, year int, id ProviderID, resolved bool) Target {
	t := Target{Filename: SanitizeFilename(libraryName(title, year, id), p.Ext)}
	// Trimming for the extension can shorten the stem; keep folder and file in step.
	t.Dir = strings.TrimSuffix(t.Filename, stripIllegal(p.Ext))

	if resolved && !id.IsZero() {
		t.Sidecar = &Sidecar{
			Filename: SanitizeFilename(t.Dir, ".nfo"),
			Content:  id.URL(KindMovie) + "\n",
		}
	}
	return t
}

// seriesTarget: "Title (Year) {tag}/Season 05/Title - S05E16 - Episode.ext".
func seriesTarget(p ParsedIdentity, title string, year int, id ProviderID, episodeTitle string) Target {
	title = SanitizeName(title)
	stem := fmt.Sprintf("%s - S%02dE%02d", title, p.Season, p.Episode)
	if episodeTitle != "" {
		stem += " - " + episodeTitle
	}
	return Target{
		Filename: SanitizeFilename(stem, p.Ext),
		Dir:      filepath.Join(SanitizeName(libraryName(title, year, id)), FormatSeasonFolder(p.Season)),
	}
}

// libraryName renders "Title (Year) {tag}", omitting the parts that are unknown.
func libraryName(title string, year int, id ProviderID) string {
	var b strings.Builder
	b.WriteString(title)
	if year > 0 {
		fmt.Fprintf(&b, " (%d)", year)
	}
	if !id.IsZero() {
		fmt.Fprintf(&b, " {%s}", id.Tag())
	}
	return b.String()
}

// SidecarFor returns the companion file for a resolved movie, or nil.
func SidecarFor(p ParsedIdentity, r *ResolvedIdentity) *Sidecar {
	return GenerateTarget(p, r).Sidecar
}

// FormatSeasonFolder returns "Season 05".
func FormatSeasonFolder(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

func yearOr(year, fallback int) int {
	if year > 0 {
		return year
	}
	return fallback
}
