package naming

import (
	"regexp"
	"strings"
)

// stripRule removes one family of release-site noise. Rules run in slice order.
type stripRule struct {
	name    string
	re      *regexp.Regexp
	replace func(match string) string
}

const (
	// Sites that prefix their uploads with "www.Site.tld - ".
	knownTrackers = `\d*(?:tamilmv|tamilblasters|tamilrockers|tamilyogi|tamilgun|moviesda|isaidub|movierulz|kuttymovies|mkvcinemas|hdhub4u|vegamovies|bolly4u|filmyzilla|filmyhit|cinevood|torrentgalaxy|rarbg|yts|yify|eztv|ettv)`
	domainSuffix  = `(?:\.[a-z0-9]{2,10})+`
	commonTLDs    = `(?:com|net|org|in|to|xyz|buzz|one|cc|me|ws|lol|pics|app|gs|nz|mx|se|si|re|fi|li|la|bz|tv|io|co|club|site|pro|fun|world|link|live|info|biz|ms|ag|am|rs|ph|pw|tel|wf)`
)

var stripRules []stripRule

func init() {
	remove := func(string) string { return " " }

	stripRules = []stripRule{
		{
			name:    "tracker_prefix",
			re:      regexp.MustCompile(`(?i)^\s*(?:www\.)?(?:[a-z0-9-]+\.)*` + knownTrackers + `[a-z0-9]*` + domainSuffix + `\s*-+\s*`),
			replace: remove,
		},
		{
			name: "tracker_tag",
			re: regexp.MustCompile(`(?i)[\[(][^\[\]()]*?(?:www\.|` + knownTrackers + `|[a-z0-9-]+\.` + commonTLDs + `\b)[^\[\]()]*[\])]`),
			replace: remove,
		},
		{
			name: "curly_tag",
			re:   regexp.MustCompile(`\{[^{}]*\}`),
			replace: func(match string) string {
				if _, ok := ParseProviderTag(match); ok {
					return match
				}
				return " "
			},
		},
		{
			name:    "generic_domain_prefix",
			re:      regexp.MustCompile(`(?i)^\s*(?:www\.)?(?:[a-z0-9-]+\.)+` + commonTLDs + `\s+-+\s*`),
			replace: remove,
		},
	}
}

// StripNoise removes tracker prefixes and tracker tags from a filename stem.
// A stem with nothing to strip is returned trimmed.
func StripNoise(rawStem string) string {
	s := rawStem
	for _, rule := range stripRules {
		s = rule.re.ReplaceAllStringFunc(s, rule.replace)
	}
	return trimSeparators(s)
}

func trimSeparators(s string) string {
	s = collapseSpaces(s)
	return strings.Trim(s, " -._")
}
