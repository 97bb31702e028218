// Package search provides full-text search over the audiobook catalog
// using Bleve. Audiobooks are indexed under their effective metadata so
// results reflect overrides and locks, not raw agent data.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Document is the indexed representation of one audiobook.
type Document struct {
	ID        string `json:"id"`
	LibraryID string `json:"library_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Narrator  string `json:"narrator"`
	Series    string `json:"series"`
}

// ToMap converts the document to the indexed shape. Text values are
// indexed under folded *_fold fields for matching; the original values
// are stored unindexed so hits display them as written.
func (d *Document) ToMap() map[string]any {
	return map[string]any{
		"id":            d.ID,
		"library_id":    d.LibraryID,
		"title":         d.Title,
		"author":        d.Author,
		"narrator":      d.Narrator,
		"series":        d.Series,
		"title_fold":    Fold(d.Title),
		"author_fold":   Fold(d.Author),
		"narrator_fold": Fold(d.Narrator),
		"series_fold":   Fold(d.Series),
	}
}

// Fold normalizes text for matching: unicode decomposition, accents
// stripped, lowercased. "Émile Zola" and "emile zola" index and query
// the same.
func Fold(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(s)
}
