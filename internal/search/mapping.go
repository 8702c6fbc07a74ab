package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for guide documents.
//
// Guides are written in several languages, so text uses the standard
// analyzer (Unicode tokens, lowercase) without stemming. Diacritics are
// folded before indexing and before querying.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	// Display title: stored for hits, not searched.
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = keyword.Name
	titleFieldMapping.Store = true
	titleFieldMapping.Index = false
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	titleTextFieldMapping := bleve.NewTextFieldMapping()
	titleTextFieldMapping.Analyzer = standard.Name
	titleTextFieldMapping.Store = false
	titleTextFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title_text", titleTextFieldMapping)

	slugFieldMapping := bleve.NewTextFieldMapping()
	slugFieldMapping.Analyzer = keyword.Name
	slugFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("slug", slugFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = standard.Name
	tagsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	bodyFieldMapping := bleve.NewTextFieldMapping()
	bodyFieldMapping.Analyzer = standard.Name
	bodyFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("body", bodyFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
