package scanner

import (
	"path/filepath"
	"strings"
)

// audioExtensions is the exact set of recognized audio extensions.
// Extending this set changes discovery behavior everywhere: scanning,
// importing, and the per-destination audio check all share it.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4b":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".aac":  true,
}

// mimeTypes maps recognized extensions to MIME types.
var mimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".m4b":  "audio/mp4",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".aac":  "audio/aac",
}

// IsAudioExt reports whether ext (with leading dot, any case) is a
// recognized audio extension.
func IsAudioExt(ext string) bool {
	return audioExtensions[strings.ToLower(ext)]
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return IsAudioExt(filepath.Ext(path))
}

// MIMEForExt returns the MIME type for an extension, falling back to
// audio/mpeg for anything unrecognized that reaches this stage.
func MIMEForExt(ext string) string {
	if mt, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mt
	}
	return "audio/mpeg"
}
