package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Pattern names reported in ParsedIdentity.Pattern.
const (
	PatternSeriesFull          = "series_full"
	PatternSeriesXFormat       = "series_x_format"
	PatternSeriesSeasonEpisode = "series_season_episode"
	PatternMovieYear           = "movie_year"
	PatternMovieQuality        = "movie_quality"
	PatternFallback            = "fallback"
)

// Confidence assigned by each structural pattern. Only used to decide whether a metadata
// lookup is worth attempting.
const (
	ConfidenceSeriesFull          = 0.9
	ConfidenceSeriesXFormat       = 0.8
	ConfidenceSeriesSeasonEpisode = 0.8
	ConfidenceMovieYear           = 0.8
	ConfidenceMovieQuality        = 0.6
	ConfidenceFallback            = 0.3
)

// structuralPattern classifies a cleaned stem. build returns false when the regexp
// matched but the captured groups do not make a usable identity.
type structuralPattern struct {
	name       string
	confidence float64
	re         *regexp.Regexp
	build      func(m map[string]string, p *ParsedIdentity) bool
}

var (
	trailingYearRegex = regexp.MustCompile(`[\s._-]*[\[(]?((?:19|20)\d{2})[\])]?$`)

	// Series patterns come strictly before movie patterns: a stem with both an episode
	// code and a year is a series.
	structuralPatterns = []structuralPattern{
		{
			name:       PatternSeriesFull,
			confidence: ConfidenceSeriesFull,
			re:         regexp.MustCompile(`(?i)^(?P<title>.+?)[\s._-]*\bS(?P<season>\d{1,2})[\s._-]?E(?P<episode>\d{1,3})(?:[\s._-]?E\d{1,3})*\b(?P<rest>.*)$`),
			build:      buildSeries,
		},
		{
			name:       PatternSeriesXFormat,
			confidence: ConfidenceSeriesXFormat,
			re:         regexp.MustCompile(`(?i)^(?P<title>.+?)[\s._-]+(?P<season>\d{1,2})x(?P<episode>\d{2,3})\b(?P<rest>.*)$`),
			build:      buildSeries,
		},
		{
			name:       PatternSeriesSeasonEpisode,
			confidence: ConfidenceSeriesSeasonEpisode,
			re:         regexp.MustCompile(`(?i)^(?P<title>.+?)[\s._-]+Season[\s._-]*(?P<season>\d{1,2})[\s._-]*Episode[\s._-]*(?P<episode>\d{1,3})\b(?P<rest>.*)$`),
			build:      buildSeries,
		},
		{
			name:       PatternMovieYear,
			confidence: ConfidenceMovieYear,
			re:         regexp.MustCompile(`^(?P<title>.+)(?:[\s._-]+[\[(]?|[\[(])(?P<year>(?:19|20)\d{2})[\])]?(?:[\s._\-\[(]|$)(?P<rest>.*)$`),
			build:      buildMovieYear,
		},
		{
			name:       PatternMovieQuality,
			confidence: ConfidenceMovieQuality,
			re:         regexp.MustCompile(`(?i)^(?P<title>.+?)[\s._\-\[(]+(?P<quality>` + qualityVocab + `)(?:[\s._\-\])]|$)`),
			build:      buildMovieQuality,
		},
	}
)

// MatchStructure runs the structural patterns against a cleaned stem in order and
// applies the first one that yields an identity. The result has only the structural
// fields set.
func MatchStructure(cleaned string) ParsedIdentity {
	p := ParsedIdentity{Cleaned: cleaned}
	for _, sp := range structuralPatterns {
		m := namedGroups(sp.re, cleaned)
		if m == nil {
			continue
		}
		candidate := p
		if !sp.build(m, &candidate) {
			continue
		}
		candidate.Pattern = sp.name
		candidate.Confidence = sp.confidence
		return candidate
	}

	p.Kind = KindUnknown
	p.Pattern = PatternFallback
	p.Confidence = ConfidenceFallback
	p.Title = CleanTitle(cleaned)
	return p
}

// Parse runs the full local pipeline on a filename: extension split, provider tag
// lift, noise stripping, structural match and field extraction.
func Parse(filename string) ParsedIdentity {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if !IsKnownExtension(ext) {
		ext = ""
	}
	stem := strings.TrimSuffix(base, ext)

	tag, hasTag := ParseProviderTag(stem)
	untagged := stem
	if hasTag {
		untagged = providerTagRegex.ReplaceAllString(stem, " ")
	}

	cleaned := StripNoise(untagged)
	if cleaned == "" {
		cleaned = trimSeparators(untagged)
	}

	p := MatchStructure(cleaned)
	p.Original = base
	p.Stem = stem
	p.Ext = ext
	if hasTag {
		p.ProviderTag = tag
	}

	f := ExtractFields(cleaned)
	p.Quality = f.Quality
	p.Source = f.Source
	p.Codec = f.Codec
	p.ReleaseGroup = f.ReleaseGroup
	p.Language = f.Language

	if p.Kind == KindSeries && p.EpisodeTitle != "" && p.ReleaseGroup != "" && p.HasTechnicalMarkers() {
		p.EpisodeTitle = strings.TrimSpace(strings.TrimSuffix(p.EpisodeTitle, " "+p.ReleaseGroup))
	}

	if p.Title == "" {
		p.Title = CleanTitle(stem)
	}
	if p.Title == "" {
		p.Title = stem
	}
	return p
}

func buildSeries(m map[string]string, p *ParsedIdentity) bool {
	season, _ := strconv.Atoi(m["season"])
	episode, _ := strconv.Atoi(m["episode"])
	// Season 0 holds specials; episode numbers start at 1.
	if episode == 0 {
		return false
	}

	title := m["title"]
	if ym := trailingYearRegex.FindStringSubmatch(title); ym != nil {
		stripped := title[:len(title)-len(ym[0])]
		if strings.TrimSpace(stripped) != "" {
			p.Year, _ = strconv.Atoi(ym[1])
			title = stripped
		}
	}
	title = cleanCaptured(title)
	if title == "" {
		return false
	}

	p.Kind = KindSeries
	p.Title = title
	p.Season = season
	p.Episode = episode
	p.EpisodeTitle = episodeTitleFrom(m["rest"])
	return true
}

func buildMovieYear(m map[string]string, p *ParsedIdentity) bool {
	year, err := strconv.Atoi(m["year"])
	if err != nil || year < 1900 || year > 2099 {
		return false
	}
	title := cleanCaptured(m["title"])
	if title == "" {
		return false
	}
	p.Kind = KindMovie
	p.Title = title
	p.Year = year
	return true
}

func buildMovieQuality(m map[string]string, p *ParsedIdentity) bool {
	title := cleanCaptured(m["title"])
	if title == "" {
		return false
	}
	p.Kind = KindMovie
	p.Title = title
	return true
}

// episodeTitleFrom takes the words after an episode code up to the first technical
// token, e.g. ".Felina.1080p.WEB-DL" -> "Felina".
func episodeTitleFrom(rest string) string {
	var words []string
	dotted := false
fields:
	for _, field := range strings.Fields(rest) {
		for _, w := range strings.Fields(normalizeSeparators(field)) {
			w = strings.Trim(w, "-")
			if w == "" {
				continue
			}
			if isTechnicalToken(w) || DetectLanguage(w) != "" {
				break fields
			}
			if strings.ContainsAny(field, "._") {
				dotted = true
			}
			words = append(words, w)
		}
	}
	title := strings.Join(words, " ")
	if !dotted && isWrittenTitle(title) {
		return title
	}
	return titleCase(title)
}

func namedGroups(re *regexp.Regexp, s string) map[string]string {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = match[i]
		}
	}
	return groups
}
