package scanner

import "github.com/audiofolio/folio-server/internal/domain"

// Discovery is a single audiobook found on disk. AssetPath is the path
// that identifies the book uniquely within its library: either a folder
// containing the media files, or the file itself for a loose file.
type Discovery struct {
	AssetPath  string
	MediaFiles []domain.MediaFile
	Embedded   *domain.EmbeddedMetadata
}

// TotalDuration sums the probed durations of the discovery's media files.
func (d Discovery) TotalDuration() float64 {
	var total float64
	for _, f := range d.MediaFiles {
		total += f.DurationSec
	}
	return total
}
