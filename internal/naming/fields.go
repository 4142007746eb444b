package naming

import (
	"regexp"
	"strings"
)

// Fields are the technical tokens extracted independently of the structural match.
type Fields struct {
	Quality      string
	Source       string
	Codec        string
	ReleaseGroup string
	Language     string
}

const (
	tokenStart = `(?:^|[\s._\-\[(])`
	tokenEnd   = `(?:$|[\s._\-\])])`

	// Matched case-insensitively.
	qualityVocab = `2160p|1440p|1080p|1080i|720p|576p|480p|4K|UHD`
	sourceVocab  = `WEB-DL|WEBDL|WEB-Rip|WEBRip|Blu-?Ray|BDRip|BRRip|HDRip|DVDRip|DVDScr|HDTV|PDTV`
	codecVocab   = `x264|x265|H\.?264|H\.?265|HEVC|AVC|AV1|XviD|DivX|VP9`
	audioVocab   = `DDP?(?:\s?[257][\s.][01])?|E-?AC-?3|AC-?3|AAC(?:\s?[257][\s.][01])?|DTS(?:-HD)?(?:\s?MA)?|DTS-X|TrueHD|FLAC|MP3|PCM|LPCM|[257][\s.][01]|2CH|6CH|\d+Kbps`

	// Matched case-sensitively: these collide with ordinary title words ("Charlotte's
	// Web", "Uncut Gems") unless written the way release groups write them.
	sourceUpperVocab = `WEB|DVD|HDCAM|CAM|TELESYNC|HDTS|TS|PreDVD`
	serviceVocab     = `AMZN|NF|DSNP|HMAX|ATVP|HULU|PCOK|ZEE5|JHS|SNXT|HS|SS|iT`
	sceneTagVocab    = `PROPER|REPACK|RERIP|iNTERNAL|INTERNAL|LIMITED|EXTENDED|UNRATED|UNCUT|REMASTERED|IMAX|TRUE|HQ|HDR10\+?|HDR|DoVi|DV|SDR|10bit|10BIT|8bit|ESubs?|ESUBS?|MSubs?|SUBS?|MULTI|DUAL|Dual-Audio|DUBBED|ORG|UNTOUCHED|HC|Atmos|ATMOS`
)

var (
	qualityRegex      = regexp.MustCompile(`(?i)` + tokenStart + `(` + qualityVocab + `)` + tokenEnd)
	sourceRegex       = regexp.MustCompile(`(?i)` + tokenStart + `(` + sourceVocab + `)` + tokenEnd)
	sourceUpperRegex  = regexp.MustCompile(tokenStart + `(` + sourceUpperVocab + `)` + tokenEnd)
	serviceRegex      = regexp.MustCompile(tokenStart + `(` + serviceVocab + `)` + tokenEnd)
	codecRegex        = regexp.MustCompile(`(?i)` + tokenStart + `(` + codecVocab + `)` + tokenEnd)
	releaseGroupRegex = regexp.MustCompile(`[^\s\-]-([A-Za-z0-9]{2,20})$`)

	// Tokens that look like a group after "WEB-" or "Blu-" are part of the source.
	notReleaseGroups = map[string]bool{"dl": true, "rip": true, "ray": true, "hd": true, "x": true}

	qualityCanonical = map[string]string{
		"4k": "4K", "uhd": "UHD", "1080i": "1080i",
	}
)

// ExtractFields pulls quality, source, codec, release group and language tokens from a
// cleaned stem. Each field is searched on its own and reports its first occurrence.
func ExtractFields(cleaned string) Fields {
	var f Fields

	if m := qualityRegex.FindStringSubmatch(cleaned); m != nil {
		f.Quality = canonicalQuality(m[1])
	}

	// Physical and web sources win over streaming-service codes.
	if m := sourceRegex.FindStringSubmatch(cleaned); m != nil {
		f.Source = m[1]
	} else if m := sourceUpperRegex.FindStringSubmatch(cleaned); m != nil {
		f.Source = m[1]
	} else if m := serviceRegex.FindStringSubmatch(cleaned); m != nil {
		f.Source = m[1]
	}

	if m := codecRegex.FindStringSubmatch(cleaned); m != nil {
		f.Codec = m[1]
	}

	if m := releaseGroupRegex.FindStringSubmatch(strings.TrimSpace(cleaned)); m != nil {
		if !notReleaseGroups[strings.ToLower(m[1])] {
			f.ReleaseGroup = m[1]
		}
	}

	f.Language = DetectLanguage(cleaned)

	return f
}

func canonicalQuality(q string) string {
	if c, ok := qualityCanonical[strings.ToLower(q)]; ok {
		return c
	}
	return strings.ToLower(q)
}
