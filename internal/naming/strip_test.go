package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripNoise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tracker prefix", "www.1TamilMV.buzz - Aavesham (2024) Malayalam", "Aavesham (2024) Malayalam"},
		{"tracker prefix other tld", "www.TamilBlasters.cards - Leo (2023)", "Leo (2023)"},
		{"tracker prefix without www", "TamilRockers.ws - Vikram (2022)", "Vikram (2022)"},
		{"bracketed tracker", "[TamilBlasters.xyz] Leo (2023)", "Leo (2023)"},
		{"parenthesized site", "Movie 2020 (www.example.com)", "Movie 2020"},
		{"curly junk", "Leo (2023) {HDHub}", "Leo (2023)"},
		{"provider tag kept", "Inception (2010) {imdb-tt1375666}", "Inception (2010) {imdb-tt1375666}"},
		{"generic domain prefix", "sitename.net - Movie 2020", "Movie 2020"},
		{"year in parens kept", "Movie (2020)", "Movie (2020)"},
		{"nothing to strip", "Breaking.Bad.S05E16", "Breaking.Bad.S05E16"},
		{"separators trimmed", "  -Movie.2020.", "Movie.2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripNoise(tt.in))
		})
	}
}

func TestStripNoise_Idempotent(t *testing.T) {
	inputs := []string{
		"www.1TamilMV.buzz - Aavesham (2024) Malayalam TRUE WEB-DL 4K",
		"[TamilBlasters.xyz] Leo (2023) Tamil HDRip",
		"Breaking.Bad.S05E16.Felina.1080p.WEB-DL.DD5.1.H.264-NTb",
	}
	for _, in := range inputs {
		once := StripNoise(in)
		assert.Equal(t, once, StripNoise(once), in)
	}
}
