package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameBytes caps a single path component, leaving headroom below the 255-byte limit
// of common filesystems for suffixes added by transfer tools.
const MaxNameBytes = 200

const illegalNameChars = `<>:"/\|?*`

// SanitizeName makes s safe as a single file or directory name: characters illegal on
// Windows/SMB shares and control characters are removed, whitespace is collapsed, trailing
// dots and spaces are trimmed and the result is capped at MaxNameBytes.
func SanitizeName(s string) string {
	return sanitizeWithExt(s, "")
}

// SanitizeFilename sanitizes stem and caps it so stem+ext fits in MaxNameBytes.
func SanitizeFilename(stem, ext string) string {
	ext = stripIllegal(ext)
	return sanitizeWithExt(stem, ext) + ext
}

func sanitizeWithExt(s, ext string) string {
	s = stripIllegal(s)
	s = collapseSpaces(s)
	s = strings.TrimRight(s, ". ")
	s = truncateBytes(s, MaxNameBytes-len(ext))
	s = strings.TrimRight(s, ". ")
	if s == "" {
		return "Untitled"
	}
	return s
}

func stripIllegal(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalNameChars, r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
