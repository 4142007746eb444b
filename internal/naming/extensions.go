package naming

import (
	"path/filepath"
	"strings"
)

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".mpg": true, ".mpeg": true, ".m2ts": true, ".ts": true,
}

var otherExtensions = map[string]bool{
	".srt": true, ".ass": true, ".ssa": true, ".sub": true, ".idx": true, ".vtt": true,
	".mp3": true, ".flac": true, ".m4a": true, ".aac": true, ".ogg": true, ".opus": true, ".wav": true,
	".nfo": true,
}

// IsKnownExtension reports whether ext (with leading dot) is a media, subtitle or
// sidecar extension. Anything else is treated as part of the stem.
func IsKnownExtension(ext string) bool {
	ext = strings.ToLower(ext)
	return videoExtensions[ext] || otherExtensions[ext]
}

// IsVideoFile reports whether path has a video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}
