package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/audiofolio/folio-server/internal/pathutil"
	"github.com/audiofolio/folio-server/internal/scanner"
	"github.com/audiofolio/folio-server/internal/store"
)

// BrowseEntry is one row in a directory listing.
type BrowseEntry struct {
	Name    string `json:"name"`
	RelPath string `json:"rel_path"`
	IsDir   bool   `json:"is_dir"`
	IsAudio bool   `json:"is_audio"`
	Size    int64  `json:"size,omitempty"`
}

// BrowseListing is the content of one folder inside a browsable root.
type BrowseListing struct {
	Root    string        `json:"root"`
	RelPath string        `json:"rel_path"`
	Entries []BrowseEntry `json:"entries"`
}

// BrowseService lists folder contents confined to configured roots.
// Library paths and import folders share the same boundary check;
// client-supplied relative paths are never trusted without it.
type BrowseService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBrowseService creates a new browse service.
func NewBrowseService(st store.Store, logger *slog.Logger) *BrowseService {
	return &BrowseService{store: st, logger: logger}
}

// BrowseDirectory lists a path inside a configured library directory.
func (s *BrowseService) BrowseDirectory(ctx context.Context, directoryID, childPath string) (*BrowseListing, error) {
	dir, err := s.store.GetDirectory(ctx, directoryID)
	if err != nil {
		return nil, err
	}
	return listWithinRoot(dir.Path, childPath)
}

// BrowseImportFolder lists a path inside a staging folder.
func (s *BrowseService) BrowseImportFolder(ctx context.Context, folderID, childPath string) (*BrowseListing, error) {
	folder, err := s.store.GetImportFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return listWithinRoot(folder.Path, childPath)
}

func listWithinRoot(root, childPath string) (*BrowseListing, error) {
	abs, rel, err := pathutil.ResolveWithinRoot(root, childPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	listing := &BrowseListing{
		Root:    root,
		RelPath: rel,
		Entries: make([]BrowseEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		name := entry.Name()
		if name != "" && name[0] == '.' {
			continue
		}

		browseEntry := BrowseEntry{
			Name:    name,
			RelPath: filepath.Join(rel, name),
			IsDir:   entry.IsDir(),
		}
		if !entry.IsDir() {
			browseEntry.IsAudio = scanner.IsAudioFile(name)
			if info, err := entry.Info(); err == nil {
				browseEntry.Size = info.Size()
			}
		}
		listing.Entries = append(listing.Entries, browseEntry)
	}

	// Folders first, then files, alphabetical within each group.
	sort.Slice(listing.Entries, func(i, j int) bool {
		a, b := listing.Entries[i], listing.Entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})

	return listing, nil
}
