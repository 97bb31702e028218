package domain

import "time"

// Audiobook represents one title in the collection. Its asset path is the
// unique filesystem path identifying it: a folder for multi-file books, the
// file itself for a loose single-file book.
type Audiobook struct {
	ID          string `json:"id"`
	LibraryID   string `json:"library_id,omitempty"`
	DirectoryID string `json:"directory_id"`
	MetadataID  string `json:"metadata_id,omitempty"`
	AssetPath   string `json:"asset_path"`

	MediaFiles []MediaFile `json:"media_files,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalDuration sums the known durations of all media files, in seconds.
// Files whose duration has not been extracted yet contribute 0.
func (a *Audiobook) TotalDuration() float64 {
	var total float64
	for _, mf := range a.MediaFiles {
		total += mf.DurationSec
	}
	return total
}

// MediaFile is a single audio file belonging to an audiobook. Filename is
// relative to the audiobook's asset path (equal to the base name for loose
// single-file books).
type MediaFile struct {
	ID          string  `json:"id"`
	AudiobookID string  `json:"audiobook_id,omitempty"`
	Filename    string  `json:"filename"`
	DurationSec float64 `json:"duration_sec"`
	MIMEType    string  `json:"mime_type"`
}
