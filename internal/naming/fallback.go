package naming

import (
	"regexp"
	"strings"
)

var (
	caselessTechnical = qualityVocab + `|` + sourceVocab + `|` + codecVocab + `|H\s26[45]|` + audioVocab
	casedTechnical    = sourceUpperVocab + `|` + serviceVocab + `|` + sceneTagVocab

	// Anchored: a single token made only of technical vocabulary.
	caselessTokenRegex = regexp.MustCompile(`(?i)^(?:` + caselessTechnical + `)$`)
	casedTokenRegex    = regexp.MustCompile(`^(?:` + casedTechnical + `)$`)

	// Unanchored variants used on whole titles; spaces stand in for the dots that title
	// cleanup already replaced ("DD5 1", "H 264").
	technicalTermRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + tokenStart + `(?:` + caselessTechnical + `)` + tokenEnd),
		regexp.MustCompile(tokenStart + `(?:` + casedTechnical + `)` + tokenEnd),
	}

	trailingGroupRegex = regexp.MustCompile(`\s*-\s*[A-Za-z0-9]{2,20}$`)
)

func isTechnicalToken(tok string) bool {
	tok = strings.Trim(tok, "-[]()")
	return caselessTokenRegex.MatchString(tok) || casedTokenRegex.MatchString(tok)
}

// cutAtTechnicalToken keeps the words of s up to the first technical token. If s starts
// with one, s is returned unchanged.
func cutAtTechnicalToken(s string) string {
	words := strings.Fields(normalizeSeparators(s))
	for i, w := range words {
		if isTechnicalToken(w) {
			if i == 0 {
				return s
			}
			return strings.Join(words[:i], " ")
		}
	}
	return s
}

// FallbackTitle strips quality, source, codec, audio and scene vocabulary from an already
// cleaned title. Language names and a trailing release group are only removed when the
// title also carries technical vocabulary, so "English Vinglish" survives. Used when no
// provider identity is available. Casing is left as parsed. Never returns "" for a
// non-empty input.
func FallbackTitle(title string) string {
	s := normalizeSeparators(title)
	patterns := technicalTermRegexes
	if hasTechnicalTerm(s) {
		s = trailingGroupRegex.ReplaceAllString(s, "")
		patterns = append(patterns[:len(patterns):len(patterns)], languageRegex)
	}
	// Matches consume the separators around them, so adjacent terms need another pass.
	for changed := true; changed; {
		changed = false
		for _, re := range patterns {
			if next := re.ReplaceAllString(s, " "); next != s {
				s = next
				changed = true
			}
		}
	}
	s = strings.Trim(collapseSpaces(s), " -")
	if s == "" {
		return normalizeSeparators(title)
	}
	return s
}

func hasTechnicalTerm(s string) bool {
	for _, re := range technicalTermRegexes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
