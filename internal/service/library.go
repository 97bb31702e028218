// Package service provides the business logic layer: scan and import
// orchestration, metadata resolution, browsing, and search.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/audiofolio/folio-server/internal/domain"
	apperrors "github.com/audiofolio/folio-server/internal/errors"
	"github.com/audiofolio/folio-server/internal/id"
	"github.com/audiofolio/folio-server/internal/importer"
	"github.com/audiofolio/folio-server/internal/scanner"
	"github.com/audiofolio/folio-server/internal/search"
	"github.com/audiofolio/folio-server/internal/store"
)

// SearchIndexer is the slice of the search index services need.
type SearchIndexer interface {
	IndexDocument(doc *search.Document) error
	DeleteDocument(id string) error
}

// LibraryService manages libraries, directories, and scan orchestration.
type LibraryService struct {
	store      store.Store
	discoverer *scanner.Discoverer
	indexer    SearchIndexer
	logger     *slog.Logger
}

// NewLibraryService creates a new library service. indexer may be nil
// to disable search indexing.
func NewLibraryService(st store.Store, discoverer *scanner.Discoverer, indexer SearchIndexer, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:      st,
		discoverer: discoverer,
		indexer:    indexer,
		logger:     logger,
	}
}

// CreateLibrary creates a library, optionally linked to existing directories.
func (s *LibraryService) CreateLibrary(ctx context.Context, name string, libType domain.LibraryType, directoryIDs []string) (*domain.Library, error) {
	for _, dirID := range directoryIDs {
		if _, err := s.store.GetDirectory(ctx, dirID); err != nil {
			return nil, apperrors.NotFoundf("directory %s not found", dirID)
		}
	}

	now := time.Now()
	lib := &domain.Library{
		ID:        id.MustGenerate(id.PrefixLibrary),
		Name:      name,
		Type:      libType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateLibrary(ctx, lib, directoryIDs); err != nil {
		return nil, err
	}

	s.logger.Info("library created", "library_id", lib.ID, "name", lib.Name)
	return s.store.GetLibrary(ctx, lib.ID)
}

// GetLibrary returns a library with its directories.
func (s *LibraryService) GetLibrary(ctx context.Context, libraryID string) (*domain.Library, error) {
	return s.store.GetLibrary(ctx, libraryID)
}

// ListLibraries returns all libraries.
func (s *LibraryService) ListLibraries(ctx context.Context) ([]*domain.Library, error) {
	return s.store.ListLibraries(ctx)
}

// CreateDirectory registers a library path, optionally linked to libraries.
func (s *LibraryService) CreateDirectory(ctx context.Context, path string, enabled bool, libraryIDs []string) (*domain.Directory, error) {
	for _, libID := range libraryIDs {
		if _, err := s.store.GetLibrary(ctx, libID); err != nil {
			return nil, apperrors.NotFoundf("library %s not found", libID)
		}
	}

	now := time.Now()
	dir := &domain.Directory{
		ID:        id.MustGenerate(id.PrefixDirectory),
		Path:      path,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateDirectory(ctx, dir, libraryIDs); err != nil {
		return nil, err
	}

	s.logger.Info("directory created", "directory_id", dir.ID, "path", dir.Path)
	return s.store.GetDirectory(ctx, dir.ID)
}

// ListDirectories returns all registered library paths.
func (s *LibraryService) ListDirectories(ctx context.Context) ([]*domain.Directory, error) {
	return s.store.ListDirectories(ctx)
}

// GetAudiobook returns one audiobook with its media files.
func (s *LibraryService) GetAudiobook(ctx context.Context, audiobookID string) (*domain.Audiobook, error) {
	return s.store.GetAudiobook(ctx, audiobookID)
}

// ListAudiobooks returns audiobooks, optionally filtered to a library.
func (s *LibraryService) ListAudiobooks(ctx context.Context, libraryID string) ([]*domain.Audiobook, error) {
	return s.store.ListAudiobooks(ctx, libraryID)
}

// ScanLibrary discovers audiobooks across every enabled directory of a
// library and registers the ones not seen before. Scanning is strictly
// additive and idempotent: a second run over an unchanged tree reports
// zero new books. A single directory failing to walk is recorded and
// skipped; it does not abort the remaining directories.
func (s *LibraryService) ScanLibrary(ctx context.Context, libraryID string) (*domain.ScanResult, error) {
	start := time.Now()

	lib, err := s.store.GetLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}

	result := &domain.ScanResult{
		LibraryID:   lib.ID,
		LibraryName: lib.Name,
	}

	for _, dir := range lib.EnabledDirectories() {
		dirScan := s.scanDirectory(ctx, lib, dir)
		result.Directories = append(result.Directories, dirScan)
		result.TotalBooksFound += dirScan.BooksFound
		result.TotalNewBooks += dirScan.NewBooks
	}

	result.Duration = time.Since(start)
	s.logger.Info("library scan finished",
		"library_id", lib.ID,
		"books_found", result.TotalBooksFound,
		"new_books", result.TotalNewBooks,
		"duration", result.Duration,
	)
	return result, nil
}

// ScanAllLibraries runs ScanLibrary over every configured library.
// Libraries fail independently; a failed library contributes a result
// carrying its error.
func (s *LibraryService) ScanAllLibraries(ctx context.Context) ([]*domain.ScanResult, error) {
	libs, err := s.store.ListLibraries(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.ScanResult, 0, len(libs))
	for _, lib := range libs {
		result, err := s.ScanLibrary(ctx, lib.ID)
		if err != nil {
			s.logger.Error("library scan failed", "library_id", lib.ID, "error", err)
			result = &domain.ScanResult{
				LibraryID:   lib.ID,
				LibraryName: lib.Name,
				Error:       err.Error(),
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *LibraryService) scanDirectory(ctx context.Context, lib *domain.Library, dir domain.Directory) domain.DirectoryScan {
	scan := domain.DirectoryScan{
		DirectoryID: dir.ID,
		Path:        dir.Path,
	}

	discoveries, err := s.discoverer.Discover(ctx, dir.Path)
	if err != nil {
		s.logger.Warn("directory unreadable, skipping",
			"directory_id", dir.ID, "path", dir.Path, "error", err)
		scan.Error = err.Error()
		return scan
	}
	scan.BooksFound = len(discoveries)

	for _, discovery := range discoveries {
		created, err := s.registerDiscovery(ctx, lib.ID, dir.ID, discovery)
		if err != nil {
			s.logger.Error("failed to register discovery",
				"asset_path", discovery.AssetPath, "error", err)
			continue
		}
		if created != nil {
			scan.NewBooks++
		}
	}

	if err := s.store.SetDirectoryScannedAt(ctx, dir.ID, time.Now()); err != nil {
		s.logger.Warn("failed to record scan timestamp", "directory_id", dir.ID, "error", err)
	}
	return scan
}

// registerDiscovery persists one discovery unless its asset path is
// already registered. Returns nil without error for known paths.
func (s *LibraryService) registerDiscovery(ctx context.Context, libraryID, directoryID string, discovery scanner.Discovery) (*domain.Audiobook, error) {
	_, err := s.store.GetAudiobookByPath(ctx, discovery.AssetPath)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	book := &domain.Audiobook{
		ID:          id.MustGenerate(id.PrefixAudiobook),
		LibraryID:   libraryID,
		DirectoryID: directoryID,
		AssetPath:   discovery.AssetPath,
		MediaFiles:  discovery.MediaFiles,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range book.MediaFiles {
		book.MediaFiles[i].ID = id.MustGenerate(id.PrefixMediaFile)
	}

	if err := s.store.CreateAudiobook(ctx, book); err != nil {
		// Concurrent scans can both pass the path check; losing the
		// insert race is equivalent to having been registered already.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, nil
		}
		return nil, err
	}

	if discovery.Embedded != nil {
		embedded := *discovery.Embedded
		embedded.AudiobookID = book.ID
		if err := s.store.SaveEmbeddedMetadata(ctx, &embedded); err != nil {
			s.logger.Warn("failed to save embedded metadata", "audiobook_id", book.ID, "error", err)
		}
	}

	created, err := s.store.GetAudiobook(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	s.indexNewBook(created, discovery.Embedded)
	return created, nil
}

// indexNewBook puts a freshly registered book into the search index
// under its best-known initial metadata: embedded tags when present,
// otherwise the filename heuristics.
func (s *LibraryService) indexNewBook(book *domain.Audiobook, embedded *domain.EmbeddedMetadata) {
	if s.indexer == nil {
		return
	}

	guessed := importer.ExtractMetadata(book.AssetPath)
	doc := &search.Document{
		ID:        book.ID,
		LibraryID: book.LibraryID,
		Title:     guessed.Title,
		Author:    guessed.Author,
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
		s.logger.Warn("failed to index audiobook", "audiobook_id", book.ID, "error", err)
	}
}
