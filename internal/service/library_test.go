package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiofolio/folio-server/internal/domain"
	apperrors "github.com/audiofolio/folio-server/internal/errors"
	"github.com/audiofolio/folio-server/internal/scanner"
)

func newLibraryService(t *testing.T) *LibraryService {
	t.Helper()
	st := newTestStore(t)
	discoverer := scanner.NewDiscoverer(nil, testLogger())
	return NewLibraryService(st, discoverer, nil, testLogger())
}

// setupLibraryWithRoot registers root as an enabled directory assigned
// to a fresh library and returns the library.
func setupLibraryWithRoot(t *testing.T, svc *LibraryService, root string) *domain.Library {
	t.Helper()
	ctx := context.Background()

	dir, err := svc.CreateDirectory(ctx, root, true, nil)
	require.NoError(t, err)

	lib, err := svc.CreateLibrary(ctx, "Main", domain.LibraryTypeAudiobooks, []string{dir.ID})
	require.NoError(t, err)
	return lib
}

func TestScanLibrary_DiscoversBooks(t *testing.T) {
	svc := newLibraryService(t)
	root := t.TempDir()

	writeAudioFile(t, filepath.Join(root, "BookA", "ch1.mp3"))
	writeAudioFile(t, filepath.Join(root, "BookA", "ch2.mp3"))
	writeAudioFile(t, filepath.Join(root, "loose.m4b"))
	writeAudioFile(t, filepath.Join(root, "Series", "Book One", "part1.mp3"))

	lib := setupLibraryWithRoot(t, svc, root)

	result, err := svc.ScanLibrary(context.Background(), lib.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalBooksFound)
	assert.Equal(t, 3, result.TotalNewBooks)
	require.Len(t, result.Directories, 1)
	assert.Empty(t, result.Directories[0].Error)

	books, err := svc.ListAudiobooks(context.Background(), lib.ID)
	require.NoError(t, err)
	require.Len(t, books, 3)

	paths := make(map[string]int)
	for _, book := range books {
		paths[book.AssetPath] = len(book.MediaFiles)
	}
	assert.Equal(t, 2, paths[filepath.Join(root, "BookA")])
	assert.Equal(t, 1, paths[filepath.Join(root, "loose.m4b")])
	assert.Equal(t, 1, paths[filepath.Join(root, "Series", "Book One")])
}

func TestScanLibrary_SecondRunFindsNothingNew(t *testing.T) {
	svc := newLibraryService(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "BookA", "ch1.mp3"))
	writeAudioFile(t, filepath.Join(root, "BookB", "ch1.mp3"))

	lib := setupLibraryWithRoot(t, svc, root)

	first, err := svc.ScanLibrary(context.Background(), lib.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalNewBooks)

	second, err := svc.ScanLibrary(context.Background(), lib.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.TotalBooksFound)
	assert.Equal(t, 0, second.TotalNewBooks)

	books, err := svc.ListAudiobooks(context.Background(), lib.ID)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestScanLibrary_DisabledDirectorySkipped(t *testing.T) {
	svc := newLibraryService(t)
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "BookA", "ch1.mp3"))

	ctx := context.Background()
	dir, err := svc.CreateDirectory(ctx, root, false, nil)
	require.NoError(t, err)
	lib, err := svc.CreateLibrary(ctx, "Main", domain.LibraryTypeAudiobooks, []string{dir.ID})
	require.NoError(t, err)

	result, err := svc.ScanLibrary(ctx, lib.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Directories)
	assert.Equal(t, 0, result.TotalBooksFound)
}

func TestScanLibrary_MissingRootRecordedNotFatal(t *testing.T) {
	svc := newLibraryService(t)
	lib := setupLibraryWithRoot(t, svc, filepath.Join(t.TempDir(), "gone"))

	result, err := svc.ScanLibrary(context.Background(), lib.ID)
	require.NoError(t, err)
	require.Len(t, result.Directories, 1)
	assert.NotEmpty(t, result.Directories[0].Error)
	assert.Equal(t, 0, result.TotalNewBooks)
}

func TestScanLibrary_UnknownLibrary(t *testing.T) {
	svc := newLibraryService(t)

	_, err := svc.ScanLibrary(context.Background(), "lib_nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestScanAllLibraries_IndependentFailures(t *testing.T) {
	svc := newLibraryService(t)
	goodRoot := t.TempDir()
	writeAudioFile(t, filepath.Join(goodRoot, "Book", "ch1.mp3"))

	setupLibraryWithRoot(t, svc, goodRoot)
	setupLibraryWithRoot(t, svc, filepath.Join(t.TempDir(), "missing"))

	results, err := svc.ScanAllLibraries(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	total := 0
	for _, result := range results {
		total += result.TotalNewBooks
	}
	assert.Equal(t, 1, total)
}

func TestCreateLibrary_UnknownDirectory(t *testing.T) {
	svc := newLibraryService(t)

	_, err := svc.CreateLibrary(context.Background(), "Main", domain.LibraryTypeAudiobooks, []string{"dir_nope"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
