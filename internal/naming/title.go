package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	separatorRunRegex = regexp.MustCompile(`[._]+`)
	spaceRunRegex     = regexp.MustCompile(`\s+`)
	romanNumeralRegex = regexp.MustCompile(`^[IVXLC]{2,5}$`)
)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRegex.ReplaceAllString(s, " "))
}

// normalizeSeparators turns "Breaking.Bad_" into "Breaking Bad".
func normalizeSeparators(s string) string {
	s = separatorRunRegex.ReplaceAllString(s, " ")
	s = collapseSpaces(s)
	return strings.Trim(s, " -")
}

// CleanTitle normalizes a captured title group: separators become spaces, whitespace is
// collapsed and the result is title-cased. A title already written out with spaces
// keeps its casing ("Game of Thrones").
func CleanTitle(s string) string {
	if isWrittenTitle(s) {
		return normalizeSeparators(s)
	}
	return titleCase(normalizeSeparators(s))
}

// cleanCaptured cleans a structural title group. The casing decision is made on the raw
// group, before technical tokens are cut away with their dots.
func cleanCaptured(raw string) string {
	cut := cutAtTechnicalToken(raw)
	if strings.ContainsAny(raw, "._") {
		return titleCase(normalizeSeparators(cut))
	}
	return CleanTitle(cut)
}

// isWrittenTitle reports whether s reads like a name typed by a person rather than a
// release stem: space separated, no dots or underscores, starting with a capital or a
// digit and not shouted.
func isWrittenTitle(s string) bool {
	s = strings.Trim(strings.TrimSpace(s), "-")
	s = strings.TrimSpace(s)
	if !strings.Contains(s, " ") || strings.ContainsAny(s, "._") || isAllUpper(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// titleCase capitalizes each word. Upper-case acronyms and roman numerals ("NCIS",
// "Rocky II") are kept unless the whole title is shouted.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	// cases.Caser keeps state and must not be shared between goroutines.
	caser := cases.Title(language.English)
	shouted := isAllUpper(s)

	words := strings.Fields(s)
	for i, w := range words {
		if !shouted && len(w) > 1 && isAllUpper(w) {
			continue
		}
		if romanNumeralRegex.MatchString(strings.ToUpper(w)) && isAllUpper(w) {
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
