package database

import (
	"regexp"
	"strings"
)

// yearSuffixPattern matches a trailing "(2019)".
var yearSuffixPattern = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

var titleReplacer = strings.NewReplacer(
	" ", "", ".", "", "-", "", "_", "",
	"'", "", ":", "", "&", "", "*", "",
	",", "", "!", "", "?", "",
	"(", "", ")", "",
	"[", "", "]", "",
)

// NormalizeTitle reduces a title to its searchable form.
// "For All Mankind (2019)" -> "forallmankind", "M*A*S*H" -> "mash".
func NormalizeTitle(title string) string {
	title = yearSuffixPattern.ReplaceAllString(title, "")
	return titleReplacer.Replace(strings.ToLower(title))
}
