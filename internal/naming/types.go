package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MediaKind is decided once per filename by the first structural pattern that matches.
type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindSeries
	KindMovie
)

// String returns a human-readable representation of the kind
func (k MediaKind) String() string {
	switch k {
	case KindSeries:
		return "series"
	case KindMovie:
		return "movie"
	default:
		return "unknown"
	}
}

// ProviderKind identifies the metadata source an id belongs to.
type ProviderKind int

const (
	ProviderNone ProviderKind = iota
	ProviderIMDb
	ProviderTMDB
	ProviderDiscogs
	ProviderMusicBrainz
)

func (k ProviderKind) String() string {
	switch k {
	case ProviderIMDb:
		return "imdb"
	case ProviderTMDB:
		return "tmdb"
	case ProviderDiscogs:
		return "discogs"
	case ProviderMusicBrainz:
		return "musicbrainz"
	default:
		return ""
	}
}

// ProviderID references a record in one metadata source.
type ProviderID struct {
	Kind ProviderKind
	ID   string
}

var providerTagRegex = regexp.MustCompile(`(?i)\{(imdb|tmdb|discogs|musicbrainz)-([A-Za-z0-9-]+)\}`)

// IsZero reports whether the id is unset
func (p ProviderID) IsZero() bool {
	return p.Kind == ProviderNone || p.ID == ""
}

// Tag renders the id the way it is embedded in library names, e.g. "imdb-tt1375666".
func (p ProviderID) Tag() string {
	if p.IsZero() {
		return ""
	}
	return p.Kind.String() + "-" + p.ID
}

// URL returns the public page of the record. TMDB distinguishes movie and tv pages.
func (p ProviderID) URL(kind MediaKind) string {
	switch p.Kind {
	case ProviderIMDb:
		return fmt.Sprintf("https://www.imdb.com/title/%s/", p.ID)
	case ProviderTMDB:
		if kind == KindSeries {
			return fmt.Sprintf("https://www.themoviedb.org/tv/%s", p.ID)
		}
		return fmt.Sprintf("https://www.themoviedb.org/movie/%s", p.ID)
	case ProviderDiscogs:
		return fmt.Sprintf("https://www.discogs.com/release/%s", p.ID)
	case ProviderMusicBrainz:
		return fmt.Sprintf("https://musicbrainz.org/release/%s", p.ID)
	default:
		return ""
	}
}

// ParseProviderTag finds a "{kind-id}" tag in s.
func ParseProviderTag(s string) (ProviderID, bool) {
	m := providerTagRegex.FindStringSubmatch(s)
	if m == nil {
		return ProviderID{}, false
	}
	var kind ProviderKind
	switch strings.ToLower(m[1]) {
	case "imdb":
		kind = ProviderIMDb
	case "tmdb":
		kind = ProviderTMDB
	case "discogs":
		kind = ProviderDiscogs
	case "musicbrainz":
		kind = ProviderMusicBrainz
	}
	return ProviderID{Kind: kind, ID: m[2]}, true
}

// ParsedIdentity is everything that can be inferred from a filename alone.
// Season and Episode are both set when Kind is KindSeries and both zero otherwise.
type ParsedIdentity struct {
	Original string
	Stem     string
	Ext      string
	Cleaned  string

	Kind       MediaKind
	Pattern    string
	Confidence float64

	Title        string
	Year         int
	Season       int
	Episode      int
	EpisodeTitle string

	Quality      string
	Source       string
	Codec        string
	ReleaseGroup string
	Language     string

	// ProviderTag is set when the filename already carries a "{imdb-…}" style tag.
	ProviderTag ProviderID
}

// HasTechnicalMarkers reports whether any quality, source or codec token was found.
func (p ParsedIdentity) HasTechnicalMarkers() bool {
	return p.Quality != "" || p.Source != "" || p.Codec != ""
}

// ResolvedIdentity is a provider-agnostic metadata record. A resolver either returns a
// complete record with ProviderID set or nothing at all.
type ResolvedIdentity struct {
	CanonicalTitle string
	Year           int
	EndYear        int
	ProviderID     ProviderID
	EpisodeTitle   string
	Ongoing        bool
	Rating         float64
}

// YearRange renders "2008", "2008-2013" or "2019-" for ongoing series.
func (r *ResolvedIdentity) YearRange() string {
	if r == nil || r.Year == 0 {
		return ""
	}
	switch {
	case r.EndYear > r.Year:
		return fmt.Sprintf("%d-%d", r.Year, r.EndYear)
	case r.Ongoing:
		return fmt.Sprintf("%d-", r.Year)
	default:
		return fmt.Sprintf("%d", r.Year)
	}
}

// Sidecar is a companion file written next to a renamed movie.
type Sidecar struct {
	Filename string
	Content  string
}

// Target is where a file belongs. Dir is relative to the library root for its kind and
// empty for files that stay at the root.
type Target struct {
	Filename string
	Dir      string
	Sidecar  *Sidecar
}

// Path joins the target under root.
func (t Target) Path(root string) string {
	return filepath.Join(root, t.Dir, t.Filename)
}
