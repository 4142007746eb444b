package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "Title (Year) {tag}" as written by the generator; year and tag are each optional.
	libraryFolderRegex = regexp.MustCompile(`^(?P<title>.+?)(?:\s\((?P<year>(?:19|20)\d{2})\))?(?:\s(?P<tag>\{[^}]+\}))?$`)
	seasonFolderRegex  = regexp.MustCompile(`(?i)^Season\s\d{1,3}$`)
)

// LibraryFolder is what a generated library folder name says about its contents.
type LibraryFolder struct {
	Title string
	Year  int
	Tag   ProviderID
}

// ParseLibraryFolder reads a "Title (Year) {tag}" folder name. Folders carrying neither
// a year nor a provider tag say nothing the filename doesn't, and are rejected.
func ParseLibraryFolder(name string) (LibraryFolder, bool) {
	m := namedGroups(libraryFolderRegex, strings.TrimSpace(name))
	if m == nil {
		return LibraryFolder{}, false
	}
	f := LibraryFolder{Title: strings.TrimSpace(m["title"])}
	f.Year, _ = strconv.Atoi(m["year"])
	if m["tag"] != "" {
		tag, ok := ParseProviderTag(m["tag"])
		if !ok {
			return LibraryFolder{}, false
		}
		f.Tag = tag
	}
	if f.Title == "" || (f.Year == 0 && f.Tag.IsZero()) {
		return LibraryFolder{}, false
	}
	return f, true
}

// ParseFile parses the base name of path and fills in what an enclosing library folder
// already records: the show folder above "Season NN" for episodes, the parent folder for
// movies. The folder only counts when its title matches the parsed one, and its casing,
// year and tag then win over what the filename lost. Nothing on disk is read.
func ParseFile(path string) ParsedIdentity {
	p := Parse(filepath.Base(path))

	dir := filepath.Dir(filepath.Clean(path))
	switch p.Kind {
	case KindSeries:
		if !seasonFolderRegex.MatchString(filepath.Base(dir)) {
			return p
		}
		dir = filepath.Dir(dir)
	case KindMovie:
	default:
		return p
	}

	f, ok := ParseLibraryFolder(filepath.Base(dir))
	if !ok || !sameTitle(f.Title, p.Title) {
		return p
	}
	if p.Year != 0 && f.Year != 0 && p.Year != f.Year {
		return p
	}
	if !p.ProviderTag.IsZero() && !f.Tag.IsZero() && p.ProviderTag != f.Tag {
		return p
	}

	p.Title = f.Title
	if p.Year == 0 {
		p.Year = f.Year
	}
	if p.ProviderTag.IsZero() {
		p.ProviderTag = f.Tag
	}
	return p
}

func sameTitle(a, b string) bool {
	return strings.EqualFold(collapseSpaces(a), collapseSpaces(b))
}
