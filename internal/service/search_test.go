package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/audiofolio/folio-server/internal/errors"
	"github.com/audiofolio/folio-server/internal/scanner"
	"github.com/audiofolio/folio-server/internal/search"
)

func newTestIndex(t *testing.T) *search.Index {
	t.Helper()
	index, err := search.NewIndex(search.Options{DataPath: t.TempDir(), Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := NewSearchService(newTestStore(t), newTestIndex(t), nil, testLogger())

	_, err := svc.Search(context.Background(), search.Params{})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestReindexAll_RebuildsFromStore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	index := newTestIndex(t)

	libs := NewLibraryService(st, scanner.NewDiscoverer(nil, testLogger()), index, testLogger())
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "Jane Doe - My Book", "ch1.mp3"))
	writeAudioFile(t, filepath.Join(root, "John Roe - Other Book", "ch1.mp3"))
	lib := setupLibraryWithRoot(t, libs, root)

	_, err := libs.ScanLibrary(ctx, lib.ID)
	require.NoError(t, err)

	meta := NewMetadataService(st, index, testLogger())
	svc := NewSearchService(st, index, meta, testLogger())

	count, err := svc.ReindexAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	docs, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), docs)
}

func TestSearch_FindsScannedBook(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	index := newTestIndex(t)

	libs := NewLibraryService(st, scanner.NewDiscoverer(nil, testLogger()), index, testLogger())
	root := t.TempDir()
	writeAudioFile(t, filepath.Join(root, "Jane Doe - My Book", "ch1.mp3"))
	lib := setupLibraryWithRoot(t, libs, root)

	_, err := libs.ScanLibrary(ctx, lib.ID)
	require.NoError(t, err)

	svc := NewSearchService(st, index, NewMetadataService(st, index, testLogger()), testLogger())

	result, err := svc.Search(ctx, search.Params{Query: "my book"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "My Book", result.Hits[0].Title)
}
