package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// "2008", "2008–2013", "2008-2013", "2019–", "2019- "
	yearRangeRegex = regexp.MustCompile(`^\s*(\d{4})\s*(?:([-–—])\s*(\d{4})?)?\s*$`)
	leadingYear    = regexp.MustCompile(`^(\d{4})`)
)

// ParseYearRange normalizes provider year strings. A trailing dash without an end year
// marks an ongoing series. Unparseable values, including "N/A", yield zeros.
func ParseYearRange(s string) (start, end int, ongoing bool) {
	m := yearRangeRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	start, _ = strconv.Atoi(m[1])
	if m[3] != "" {
		end, _ = strconv.Atoi(m[3])
		if end < start {
			end = 0
		}
	}
	ongoing = m[2] != "" && m[3] == ""
	return start, end, ongoing
}

// YearFromDate extracts the year of a "2008-01-20" style date.
func YearFromDate(s string) int {
	m := leadingYear.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// ParseRating parses "7.8" or "7.8/10". Missing values ("", "N/A") are 0.
func ParseRating(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r < 0 {
		return 0
	}
	return r
}
