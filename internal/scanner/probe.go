package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/simonhull/audiometa"

	"github.com/audiofolio/folio-server/internal/domain"
)

// ProbeResult holds what a single media file could tell us about itself.
type ProbeResult struct {
	DurationSec  float64
	Title        string
	Author       string
	Series       string
	SeriesNumber string
}

// AudioProbe extracts duration and embedded tags from a media file.
type AudioProbe interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

const probeTimeout = 30 * time.Second

// FileProbe reads tags and duration with audiometa.
type FileProbe struct {
	logger *slog.Logger
}

func NewFileProbe(logger *slog.Logger) *FileProbe {
	return &FileProbe{logger: logger}
}

func (p *FileProbe) Probe(ctx context.Context, path string) (ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return ProbeResult{}, err
	}
	defer file.Close()

	result := ProbeResult{
		DurationSec:  file.Audio.Duration.Seconds(),
		Title:        bookTitle(file),
		Author:       file.Tags.Artist,
		Series:       file.Tags.Series,
		SeriesNumber: file.Tags.SeriesPart,
	}
	return result, nil
}

// bookTitle prefers the album tag. For audiobooks the album carries the
// book title while the title tag usually names a chapter or track.
func bookTitle(file *audiometa.File) string {
	if file.Tags.Album != "" {
		return file.Tags.Album
	}
	return file.Tags.Title
}

// embeddedFromProbe maps a probe result onto the embedded metadata layer.
// Returns nil when the file carried nothing useful.
func embeddedFromProbe(r ProbeResult) *domain.EmbeddedMetadata {
	if r.Title == "" && r.Author == "" && r.Series == "" && r.SeriesNumber == "" {
		return nil
	}
	return &domain.EmbeddedMetadata{
		Title:        r.Title,
		Author:       r.Author,
		Series:       r.Series,
		SeriesNumber: r.SeriesNumber,
	}
}
