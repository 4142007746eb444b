// Package validator reports files whose names differ from the library layout,
// without touching them or asking a metadata provider.
package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/organizer"
)

type ValidationResult struct {
	Valid        bool
	Kind         naming.MediaKind
	Path         string
	CurrentName  string
	ExpectedName string
	ExpectedDir  string
	Issues       []string
}

type Validator struct {
	allowMissingYear   bool
	requireProviderTag bool
}

type Option func(*Validator)

// WithAllowMissingYear accepts movies named without a year.
func WithAllowMissingYear(allow bool) Option {
	return func(v *Validator) {
		v.allowMissingYear = allow
	}
}

// WithRequireProviderTag flags movies and series without a "{imdb-…}" style tag.
func WithRequireProviderTag(require bool) Option {
	return func(v *Validator) {
		v.requireProviderTag = require
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateFile checks one path against the name it would get offline. Year, tag and
// title casing recorded by an enclosing library folder count as known.
func (v *Validator) ValidateFile(path string) *ValidationResult {
	filename := filepath.Base(path)
	p := naming.ParseFile(path)
	target := naming.GenerateTarget(p, nil)

	result := &ValidationResult{
		Kind:         p.Kind,
		Path:         path,
		CurrentName:  filename,
		ExpectedName: target.Filename,
		ExpectedDir:  target.Dir,
	}

	if p.Kind == naming.KindUnknown {
		result.Issues = append(result.Issues, "Not recognizable as a movie or episode")
	}
	if p.HasTechnicalMarkers() {
		result.Issues = append(result.Issues, "Contains release markers")
	}
	if p.Kind == naming.KindMovie && p.Year == 0 && !v.allowMissingYear {
		result.Issues = append(result.Issues, "No year")
	}
	if v.requireProviderTag && p.Kind != naming.KindUnknown && p.ProviderTag.IsZero() {
		result.Issues = append(result.Issues, "No provider tag")
	}
	if filename != target.Filename {
		result.Issues = append(result.Issues, "Filename doesn't match expected format")
	}
	if target.Dir != "" && !inDir(path, target.Dir) {
		result.Issues = append(result.Issues, fmt.Sprintf("Not in expected folder (expected: %s)", target.Dir))
	}

	result.Valid = len(result.Issues) == 0
	return result
}

// ValidateTree checks every video file under root.
func (v *Validator) ValidateTree(root string) ([]*ValidationResult, error) {
	files, err := organizer.CollectMediaFiles(root)
	if err != nil {
		return nil, err
	}
	results := make([]*ValidationResult, 0, len(files))
	for _, f := range files {
		results = append(results, v.ValidateFile(f))
	}
	return results, nil
}

// inDir reports whether path's directory ends with the relative dir.
func inDir(path, dir string) bool {
	parent := filepath.Clean(filepath.Dir(path))
	dir = filepath.Clean(dir)
	return parent == dir || strings.HasSuffix(parent, string(filepath.Separator)+dir)
}
