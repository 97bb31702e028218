package service

import (
	"context"
	"log/slog"

	"github.com/audiofolio/folio-server/internal/domain"
	apperrors "github.com/audiofolio/folio-server/internal/errors"
	"github.com/audiofolio/folio-server/internal/search"
	"github.com/audiofolio/folio-server/internal/store"
)

// SearchService answers catalog queries against the bleve index and can
// rebuild the index from the store.
type SearchService struct {
	store    store.Store
	index    *search.Index
	metadata *MetadataService
	logger   *slog.Logger
}

func NewSearchService(st store.Store, index *search.Index, meta *MetadataService, logger *slog.Logger) *SearchService {
	return &SearchService{store: st, index: index, metadata: meta, logger: logger}
}

// Search runs a fuzzy text query over title, author, narrator and series.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Query == "" {
		return nil, apperrors.Validation("search query is required")
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	return s.index.Search(ctx, params)
}

// DocumentCount reports how many audiobooks the index currently holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the search index from every audiobook in the store,
// using each book's effective metadata so overrides and locks are reflected.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	books, err := s.store.ListAudiobooks(ctx, "")
	if err != nil {
		return 0, err
	}

	docs := make([]*search.Document, 0, len(books))
	for _, book := range books {
		effective, err := s.metadata.GetEffectiveMetadata(ctx, book.ID)
		if err != nil {
			s.logger.Warn("skipping audiobook during reindex",
				"audiobook_id", book.ID, "error", err)
			continue
		}
		docs = append(docs, &search.Document{
			ID:        book.ID,
			LibraryID: book.LibraryID,
			Title:     effective.Fields[domain.FieldTitle].Value,
			Author:    effective.Fields[domain.FieldAuthor].Value,
			Narrator:  effective.Fields[domain.FieldNarrator].Value,
			Series:    effective.Fields[domain.FieldSeries].Value,
		})
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, err
	}
	s.logger.Info("search index rebuilt", "documents", len(docs))
	return len(docs), nil
}
