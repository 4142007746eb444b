package organizer

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/naming"
)

var sampleRegex = regexp.MustCompile(`(?i)(^|[\s._-])sample([\s._-]|$)`)

// IsSample reports whether a file name marks a release sample clip.
func IsSample(name string) bool {
	return sampleRegex.MatchString(strings.TrimSuffix(name, filepath.Ext(name)))
}

// CollectMediaFiles returns the video files under root in lexical order. root may be a
// single file. Hidden directories and sample clips are skipped.
func CollectMediaFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if naming.IsVideoFile(root) && !IsSample(filepath.Base(root)) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		if naming.IsVideoFile(name) && !IsSample(name) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
