package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/audiofolio/folio-server/internal/domain"
	apperrors "github.com/audiofolio/folio-server/internal/errors"
	"github.com/audiofolio/folio-server/internal/id"
	"github.com/audiofolio/folio-server/internal/importer"
	"github.com/audiofolio/folio-server/internal/pathutil"
	"github.com/audiofolio/folio-server/internal/scanner"
	"github.com/audiofolio/folio-server/internal/search"
	"github.com/audiofolio/folio-server/internal/store"
)

// ImportService moves staged content into the managed tree and
// registers the resulting audiobooks.
type ImportService struct {
	store   store.Store
	probe   scanner.AudioProbe
	indexer SearchIndexer
	logger  *slog.Logger

	// arrivals tracks which folders the watcher flagged since their last
	// import. In-memory only; lost on restart.
	mu       sync.Mutex
	arrivals map[string]bool
}

// NewImportService creates a new import service. probe and indexer may
// be nil.
func NewImportService(st store.Store, probe scanner.AudioProbe, indexer SearchIndexer, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:    st,
		probe:    probe,
		indexer:  indexer,
		logger:   logger,
		arrivals: make(map[string]bool),
	}
}

// FlagArrival marks a folder as having new files since its last import.
// Called by the folder watcher.
func (s *ImportService) FlagArrival(folderID string) {
	s.mu.Lock()
	s.arrivals[folderID] = true
	s.mu.Unlock()
}

func (s *ImportService) clearArrival(folderID string) {
	s.mu.Lock()
	delete(s.arrivals, folderID)
	s.mu.Unlock()
}

func (s *ImportService) hasArrival(folderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arrivals[folderID]
}

// CreateImportFolder registers a staging folder.
func (s *ImportService) CreateImportFolder(ctx context.Context, name, path string, enabled bool) (*domain.ImportFolder, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Validationf("import folder path is not accessible: %v", err)
	}
	if !info.IsDir() {
		return nil, apperrors.Validation("import folder path is not a directory")
	}

	now := time.Now()
	folder := &domain.ImportFolder{
		ID:        id.MustGenerate(id.PrefixImportFolder),
		Name:      name,
		Path:      path,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateImportFolder(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("import folder created", "folder_id", folder.ID, "path", folder.Path)
	return folder, nil
}

// ListImportFolders returns all staging folders with their arrival flags.
func (s *ImportService) ListImportFolders(ctx context.Context) ([]*domain.ImportFolder, error) {
	folders, err := s.store.ListImportFolders(ctx)
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		folder.HasNewFiles = s.hasArrival(folder.ID)
	}
	return folders, nil
}

// GetImportSettings returns the active destination configuration.
func (s *ImportService) GetImportSettings(ctx context.Context) (*domain.ImportSettings, error) {
	return s.store.GetImportSettings(ctx)
}

// SaveImportSettings replaces the destination configuration.
func (s *ImportService) SaveImportSettings(ctx context.Context, template, root string) (*domain.ImportSettings, error) {
	if template == "" {
		return nil, apperrors.Validation("destination template must not be empty")
	}
	settings := &domain.ImportSettings{
		DestinationTemplate: template,
		DestinationRoot:     root,
		UpdatedAt:           time.Now(),
	}
	if err := s.store.SaveImportSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ImportSelection imports the selected staging entries. Selections are
// relative to the folder root and must not escape it. Each selection
// fails independently: the job reports per-item errors alongside the
// books that did import, and its status resolves to completed, partial,
// or failed. Only a misconfigured request (unknown folder, disabled
// folder, missing destination root) fails before any work starts.
//
// File copy and record insert are not wrapped in a transaction. A crash
// between them leaves copied files on disk with no record; the next
// scan of the destination picks them up.
func (s *ImportService) ImportSelection(ctx context.Context, folderID string, selections []string, templateOverride string) (*domain.ImportJob, error) {
	folder, err := s.store.GetImportFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !folder.Enabled {
		return nil, apperrors.FolderDisabled("import folder is disabled")
	}

	settings, err := s.store.GetImportSettings(ctx)
	if err != nil {
		return nil, err
	}
	template := settings.DestinationTemplate
	if templateOverride != "" {
		template = templateOverride
	}
	if settings.DestinationRoot == "" {
		return nil, apperrors.Validation("import destination root is not configured")
	}

	directories, err := s.store.ListDirectories(ctx)
	if err != nil {
		return nil, err
	}

	job := &domain.ImportJob{
		SourcePaths: selections,
		StartedAt:   time.Now(),
	}

	for _, selection := range selections {
		book, err := s.importOne(ctx, folder, selection, template, settings.DestinationRoot, directories)
		if err != nil {
			s.logger.Warn("import item failed",
				"folder_id", folder.ID, "selection", selection, "error", err)
			job.Errors = append(job.Errors, domain.ImportError{
				Path:    selection,
				Message: err.Error(),
			})
			continue
		}
		job.ImportedBooks = append(job.ImportedBooks, *book)
	}

	job.CompletedAt = time.Now()
	job.Resolve()
	s.clearArrival(folder.ID)

	s.logger.Info("import job finished",
		"folder_id", folder.ID,
		"status", job.Status,
		"imported", len(job.ImportedBooks),
		"errors", len(job.Errors),
	)
	return job, nil
}

func (s *ImportService) importOne(ctx context.Context, folder *domain.ImportFolder, selection, template, destRoot string, directories []*domain.Directory) (*domain.Audiobook, error) {
	src, _, err := pathutil.ResolveWithinRoot(folder.Path, selection)
	if err != nil {
		return nil, err
	}

	meta := importer.ExtractMetadata(src)
	dest := importer.BuildDestination(meta, template, destRoot)

	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		// Templates build the destination from the trimmed title, so a
		// single-file source must get its audio extension back or the
		// copied file stops being recognized as audio.
		if ext := filepath.Ext(src); ext != "" && filepath.Ext(dest) != ext {
			dest += ext
		}
	}

	if err := importer.Copy(src, dest); err != nil {
		return nil, err
	}

	filePaths, assetPath, err := destinationAudioFiles(dest)
	if err != nil {
		return nil, err
	}
	if len(filePaths) == 0 {
		return nil, apperrors.NoAudioFiles("no audio files found in imported content")
	}

	match := containingDirectory(directories, assetPath)
	if match == nil {
		return nil, apperrors.NoLibraryAssigned("destination path is not inside any configured library path")
	}
	dir, err := s.store.GetDirectory(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	if len(dir.Libraries) != 1 {
		return nil, apperrors.NoLibraryAssigned("library path is not assigned to a library")
	}

	now := time.Now()
	book := &domain.Audiobook{
		ID:          id.MustGenerate(id.PrefixAudiobook),
		LibraryID:   dir.Libraries[0].ID,
		DirectoryID: dir.ID,
		AssetPath:   assetPath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var embedded *domain.EmbeddedMetadata
	for _, path := range filePaths {
		file := domain.MediaFile{
			ID:       id.MustGenerate(id.PrefixMediaFile),
			Filename: filepath.Base(path),
			MIMEType: scanner.MIMEForExt(filepath.Ext(path)),
		}
		if s.probe != nil {
			result, probeErr := s.probe.Probe(ctx, path)
			if probeErr != nil {
				s.logger.Warn("failed to probe imported file", "path", path, "error", probeErr)
			} else {
				file.DurationSec = result.DurationSec
				if embedded == nil && (result.Title != "" || result.Author != "") {
					embedded = &domain.EmbeddedMetadata{
						Title:        result.Title,
						Author:       result.Author,
						Series:       result.Series,
						SeriesNumber: result.SeriesNumber,
					}
				}
			}
		}
		book.MediaFiles = append(book.MediaFiles, file)
	}

	if err := s.store.CreateAudiobook(ctx, book); err != nil {
		return nil, err
	}

	if embedded != nil {
		embedded.AudiobookID = book.ID
		if err := s.store.SaveEmbeddedMetadata(ctx, embedded); err != nil {
			s.logger.Warn("failed to save embedded metadata", "audiobook_id", book.ID, "error", err)
		}
	}

	created, err := s.store.GetAudiobook(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	if s.indexer != nil {
		doc := &search.Document{
			ID:        created.ID,
			LibraryID: created.LibraryID,
			Title:     meta.Title,
			Author:    meta.Author,
		}
		if embedded != nil {
			if embedded.Title != "" {
				doc.Title = embedded.Title
			}
			if embedded.Author != "" {
				doc.Author = embedded.Author
			}
			doc.Series = embedded.Series
		}
		if err := s.indexer.IndexDocument(doc); err != nil {
			s.logger.Warn("failed to index imported audiobook", "audiobook_id", created.ID, "error", err)
		}
	}

	return created, nil
}

// destinationAudioFiles lists the audio content of a copied destination.
// A destination file is its own single-file book; a destination folder
// is checked flat, without recursion.
func destinationAudioFiles(dest string) (filePaths []string, assetPath string, err error) {
	info, err := os.Stat(dest)
	if err != nil {
		return nil, "", err
	}
	if !info.IsDir() {
		if !scanner.IsAudioFile(dest) {
			return nil, dest, nil
		}
		return []string{dest}, dest, nil
	}

	files, err := scanner.DirectAudioFiles(dest)
	if err != nil {
		return nil, "", err
	}
	return files, dest, nil
}

// containingDirectory finds the configured directory that physically
// contains the destination, preferring the longest matching path.
// Returns nil when no directory contains it.
func containingDirectory(directories []*domain.Directory, assetPath string) *domain.Directory {
	var match *domain.Directory
	for _, dir := range directories {
		if !pathutil.Contains(dir.Path, assetPath) {
			continue
		}
		if match == nil || len(dir.Path) > len(match.Path) {
			match = dir
		}
	}
	return match
}
