package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for audiobook documents.
// The *_fold fields carry pre-folded text and use the simple analyzer;
// their unfolded twins are stored only, for display. Id fields use
// keyword for exact filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	foldedField := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = simple.Name
		fm.Store = false
		return fm
	}
	storedField := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Index = false
		fm.Store = true
		fm.IncludeInAll = false
		return fm
	}

	for _, name := range []string{"title", "author", "narrator", "series"} {
		docMapping.AddFieldMappingsAt(name, storedField())
		docMapping.AddFieldMappingsAt(name+"_fold", foldedField())
	}

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	idField.Store = true
	docMapping.AddFieldMappingsAt("id", idField)

	libraryField := bleve.NewTextFieldMapping()
	libraryField.Analyzer = keyword.Name
	libraryField.Store = true
	docMapping.AddFieldMappingsAt("library_id", libraryField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
