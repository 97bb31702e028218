package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func TestNewIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexDocument(t *testing.T) {
	index := setupTestIndex(t)

	doc := &Document{
		ID:     "ab-123",
		Title:  "The Hobbit",
		Author: "J.R.R. Tolkien",
	}
	require.NoError(t, index.IndexDocument(doc))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_ByTitleAndAuthor(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocuments([]*Document{
		{ID: "ab-1", LibraryID: "lib-a", Title: "The Hobbit", Author: "J.R.R. Tolkien"},
		{ID: "ab-2", LibraryID: "lib-a", Title: "Dune", Author: "Frank Herbert"},
		{ID: "ab-3", LibraryID: "lib-b", Title: "Germinal", Author: "Émile Zola"},
	}))

	res, err := index.Search(context.Background(), Params{Query: "hobbit"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "ab-1", res.Hits[0].ID)

	res, err = index.Search(context.Background(), Params{Query: "herbert"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "ab-2", res.Hits[0].ID)
}

func TestSearch_AccentFolding(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocument(&Document{
		ID: "ab-3", LibraryID: "lib-b", Title: "Germinal", Author: "Émile Zola",
	}))

	res, err := index.Search(context.Background(), Params{Query: "emile"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "ab-3", res.Hits[0].ID)
}

func TestSearch_LibraryFilter(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocuments([]*Document{
		{ID: "ab-1", LibraryID: "lib-a", Title: "Common Title"},
		{ID: "ab-2", LibraryID: "lib-b", Title: "Common Title"},
	}))

	res, err := index.Search(context.Background(), Params{Query: "common", LibraryID: "lib-a"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "ab-1", res.Hits[0].ID)
}

func TestDeleteDocument(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocument(&Document{ID: "ab-1", Title: "Gone"}))
	require.NoError(t, index.DeleteDocument("ab-1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
