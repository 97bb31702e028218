package search

import (
	"context"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a catalog search.
type Params struct {
	Query     string
	LibraryID string // empty = all libraries
	Limit     int
	Offset    int
}

// Result holds the outcome of one search.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"tookMs"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matched audiobook.
type Hit struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Series string  `json:"series,omitempty"`
}

// Search runs a fuzzy-tolerant match across title, author, narrator and
// series, optionally filtered to one library.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	folded := Fold(params.Query)

	var queries []query.Query
	for _, field := range []string{"title_fold", "author_fold", "narrator_fold", "series_fold"} {
		match := bleve.NewMatchQuery(folded)
		match.SetField(field)
		match.SetFuzziness(1)
		queries = append(queries, match)

		prefix := bleve.NewPrefixQuery(folded)
		prefix.SetField(field)
		queries = append(queries, prefix)
	}
	textQuery := bleve.NewDisjunctionQuery(queries...)

	var searchQuery query.Query = textQuery
	if params.LibraryID != "" {
		libQuery := bleve.NewTermQuery(params.LibraryID)
		libQuery.SetField("library_id")
		searchQuery = bleve.NewConjunctionQuery(textQuery, libQuery)
	}

	req := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	req.Fields = []string{"id", "title", "author", "series"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		result.Hits = append(result.Hits, Hit{
			ID:     hit.ID,
			Score:  hit.Score,
			Title:  stringField(hit.Fields, "title"),
			Author: stringField(hit.Fields, "author"),
			Series: stringField(hit.Fields, "series"),
		})
	}
	return result, nil
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
