package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/audiofolio/folio-server/internal/domain"
)

// Discoverer finds audiobooks under a library directory.
//
// Discovery runs in two passes. Loose audio files directly under the
// root each become a single-file audiobook. Then each immediate
// subdirectory is walked depth-first: the first folder on each branch
// that directly contains audio files becomes a book boundary, and the
// walk does not descend below it. Deeper audio files inside a book
// folder are intentionally invisible to discovery.
type Discoverer struct {
	probe  AudioProbe
	logger *slog.Logger
}

// NewDiscoverer creates a discoverer. probe may be nil, in which case
// media files are recorded without durations or embedded tags.
func NewDiscoverer(probe AudioProbe, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		probe:  probe,
		logger: logger,
	}
}

// Discover scans root and returns the audiobooks found, ordered by path.
// An unreadable root is an error; unreadable directories below it are
// logged and skipped.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]Discovery, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var discoveries []Discovery

	// Pass 1: loose audio files directly under the root.
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		if !IsAudioFile(entry.Name()) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		discoveries = append(discoveries, d.buildDiscovery(ctx, path, []string{path}))
	}

	// Pass 2: subdirectories, depth-first with book-boundary pruning.
	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		found, err := d.walkBranch(ctx, filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, err
		}
		discoveries = append(discoveries, found...)
	}

	return discoveries, nil
}

// walkBranch walks one subdirectory of the root. Every folder that
// directly contains audio becomes one discovery and its subtree is
// skipped, so sibling branches can still yield their own books.
func (d *Discoverer) walkBranch(ctx context.Context, dir string) ([]Discovery, error) {
	var discoveries []Discovery

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			d.logger.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}

		if !entry.IsDir() {
			return nil
		}
		if isHidden(entry.Name()) {
			return filepath.SkipDir
		}

		audioFiles, err := DirectAudioFiles(path)
		if err != nil {
			d.logger.Warn("skipping unreadable directory", "path", path, "error", err)
			return filepath.SkipDir
		}
		if len(audioFiles) == 0 {
			return nil
		}

		discoveries = append(discoveries, d.buildDiscovery(ctx, path, audioFiles))
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}

	return discoveries, nil
}

// buildDiscovery assembles the media file list for a book and probes
// each file. Probe failures degrade to zero duration rather than
// failing the discovery.
func (d *Discoverer) buildDiscovery(ctx context.Context, assetPath string, filePaths []string) Discovery {
	discovery := Discovery{
		AssetPath:  assetPath,
		MediaFiles: make([]domain.MediaFile, 0, len(filePaths)),
	}

	for _, path := range filePaths {
		file := domain.MediaFile{
			Filename: filepath.Base(path),
			MIMEType: MIMEForExt(filepath.Ext(path)),
		}

		if d.probe != nil {
			result, err := d.probe.Probe(ctx, path)
			if err != nil {
				d.logger.Warn("failed to probe media file", "path", path, "error", err)
			} else {
				file.DurationSec = result.DurationSec
				if discovery.Embedded == nil {
					discovery.Embedded = embeddedFromProbe(result)
				}
			}
		}

		discovery.MediaFiles = append(discovery.MediaFiles, file)
	}

	return discovery
}

// DirectAudioFiles lists the audio files immediately inside dir, sorted
// by name. Non-recursive; import destinations are validated with this
// same flat listing.
func DirectAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		if IsAudioFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// HasAudio reports whether dir directly contains at least one audio
// file. Used by import to validate destinations without running a full
// discovery.
func HasAudio(dir string) bool {
	files, err := DirectAudioFiles(dir)
	return err == nil && len(files) > 0
}
