package naming

import (
	"regexp"
	"sort"
	"strings"
)

// languageKeywords maps every recognized spelling to its canonical language name.
// Abbreviations only match as standalone tokens.
var languageKeywords = map[string]string{
	"malayalam": "Malayalam", "mal": "Malayalam",
	"tamil": "Tamil", "tam": "Tamil",
	"hindi": "Hindi", "hin": "Hindi",
	"telugu": "Telugu", "tel": "Telugu",
	"kannada": "Kannada", "kan": "Kannada",
	"english": "English", "eng": "English",
	"bengali": "Bengali", "bangla": "Bengali",
	"marathi": "Marathi",
	"punjabi": "Punjabi",
	"gujarati": "Gujarati", "guj": "Gujarati",
	"odia": "Odia",
	"urdu": "Urdu",
	"korean": "Korean", "kor": "Korean",
	"japanese": "Japanese", "jap": "Japanese", "jpn": "Japanese",
	"chinese": "Chinese", "mandarin": "Chinese",
	"spanish": "Spanish", "castellano": "Spanish",
	"french": "French", "fre": "French", "fra": "French",
	"german": "German", "ger": "German", "deu": "German",
	"italian": "Italian", "ita": "Italian",
	"russian": "Russian", "rus": "Russian",
	"portuguese": "Portuguese",
	"arabic": "Arabic",
	"thai": "Thai",
	"turkish": "Turkish",
}

var languageRegex *regexp.Regexp

func init() {
	keys := make([]string, 0, len(languageKeywords))
	for k := range languageKeywords {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	// Longest spelling first so "tamil" is preferred over "tam" at the same offset.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	languageRegex = regexp.MustCompile(`(?i)` + tokenStart + `(` + strings.Join(keys, "|") + `)` + tokenEnd)
}

// DetectLanguage returns the first language keyword in s, or "".
func DetectLanguage(s string) string {
	m := languageRegex.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return languageKeywords[strings.ToLower(m[1])]
}

// Languages lists the canonical language names DetectLanguage can report.
func Languages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range languageKeywords {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
