package config

import "strings"

// MaskSecret hides all but the last four characters of an API key.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case len(s) <= 4:
		return strings.Repeat("*", len(s))
	default:
		return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
	}
}
