package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		opts      []Option
		wantValid bool
		wantIssue string
	}{
		{
			name:      "organized movie",
			path:      "/lib/Inception (2010) {imdb-tt1375666}/Inception (2010) {imdb-tt1375666}.mkv",
			wantValid: true,
		},
		{
			name:      "organized episode",
			path:      "/lib/Some Obscure Show/Season 01/Some Obscure Show - S01E02.mkv",
			wantValid: true,
		},
		{
			name:      "release name",
			path:      "/dl/Some.Movie.2019.1080p.BluRay.x264-GRP.mkv",
			wantIssue: "Contains release markers",
		},
		{
			name:      "wrong folder",
			path:      "/dl/Some Movie (2019).mkv",
			wantIssue: "Not in expected folder (expected: Some Movie (2019))",
		},
		{
			name:      "episode outside season folder",
			path:      "/lib/Some Obscure Show/Some Obscure Show - S01E02.mkv",
			wantIssue: "Not in expected folder",
		},
		{
			name:      "missing tag required",
			path:      "/lib/Some Movie (2019)/Some Movie (2019).mkv",
			opts:      []Option{WithRequireProviderTag(true)},
			wantIssue: "No provider tag",
		},
		{
			name:      "unknown kind",
			path:      "/dl/Random Video File.mkv",
			wantIssue: "Not recognizable as a movie or episode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewValidator(tt.opts...).ValidateFile(tt.path)
			assert.Equal(t, tt.wantValid, res.Valid, "issues: %v", res.Issues)
			if tt.wantIssue != "" {
				found := false
				for _, issue := range res.Issues {
					if strings.HasPrefix(issue, tt.wantIssue) {
						found = true
					}
				}
				assert.True(t, found, "want %q in %v", tt.wantIssue, res.Issues)
			}
		})
	}
}

func TestValidateFile_ExpectedName(t *testing.T) {
	res := NewValidator().ValidateFile("/dl/Some.Movie.2019.1080p.BluRay.x264-GRP.mkv")
	assert.Equal(t, naming.KindMovie, res.Kind)
	assert.Equal(t, "Some Movie (2019).mkv", res.ExpectedName)
	assert.Equal(t, "Some Movie (2019)", res.ExpectedDir)
}

func TestValidateTree(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "Some Movie (2019)", "Some Movie (2019).mkv")
	bad := filepath.Join(root, "Other.Movie.2020.720p.WEB-DL.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(good), 0755))
	require.NoError(t, os.WriteFile(good, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0644))

	results, err := NewValidator().ValidateTree(root)
	require.NoError(t, err)
	require.Len(t, results, 2)

	valid := map[string]bool{}
	for _, r := range results {
		valid[r.Path] = r.Valid
	}
	assert.True(t, valid[good])
	assert.False(t, valid[bad])
}

func TestValidateTree_ResolvedLibrary(t *testing.T) {
	root := t.TempDir()
	files := []string{
		filepath.Join(root, "tv", "Game of Thrones (2011) {imdb-tt0944947}", "Season 03",
			"Game of Thrones - S03E09 - The Rains of Castamere.mkv"),
		filepath.Join(root, "movies", "The Lord of the Rings The Fellowship of the Ring (2001) {imdb-tt0120737}",
			"The Lord of the Rings The Fellowship of the Ring (2001) {imdb-tt0120737}.mkv"),
		filepath.Join(root, "movies", "eXistenZ (1999) {imdb-tt0120907}", "eXistenZ (1999) {imdb-tt0120907}.mkv"),
	}
	for _, f := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(f), 0755))
		require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	}

	results, err := NewValidator(WithRequireProviderTag(true)).ValidateTree(root)
	require.NoError(t, err)
	require.Len(t, results, len(files))
	for _, r := range results {
		assert.True(t, r.Valid, "%s: %v", r.CurrentName, r.Issues)
	}
}
