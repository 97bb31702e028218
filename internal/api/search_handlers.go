package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/audiofolio/folio-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search the catalog",
		Description: "Fuzzy full-text search over title, author, narrator and series",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexCatalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/reindex",
		Summary:     "Rebuild the search index",
		Description: "Reindexes every audiobook under its effective metadata",
		Tags:        []string{"Search"},
	}, s.handleReindex)
}

// === DTOs ===

// SearchInput contains search parameters.
type SearchInput struct {
	Query     string `query:"q" doc:"Search text"`
	LibraryID string `query:"library_id" doc:"Restrict to one library, empty for all"`
	Limit     int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum hits to return"`
	Offset    int    `query:"offset" minimum:"0" doc:"Hits to skip for paging"`
}

// SearchOutput wraps a search result for Huma.
type SearchOutput struct {
	Body search.Result
}

// ReindexResponse reports the outcome of an index rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Number of audiobooks indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, search.Params{
		Query:     input.Query,
		LibraryID: input.LibraryID,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	if err := s.allowTrigger("reindex"); err != nil {
		return nil, err
	}

	indexed, err := s.services.Search.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ReindexOutput{Body: ReindexResponse{Indexed: indexed}}, nil
}
