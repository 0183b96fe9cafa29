package indexing

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
)

// NewIndexMapping returns the mapping used for SymbolDoc indexes.
// Keys, scopes and targets are indexed verbatim; labels, contexts and
// keywords go through the standard analyzer.
func NewIndexMapping() mapping.IndexMapping {
	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name

	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name

	stored := bleve.NewTextFieldMapping()
	stored.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("key", exact)
	doc.AddFieldMappingsAt("scope", exact)
	doc.AddFieldMappingsAt("shard", exact)
	doc.AddFieldMappingsAt("label", text)
	doc.AddFieldMappingsAt("context", text)
	doc.AddFieldMappingsAt("keywords", text)
	doc.AddFieldMappingsAt("page", stored)
	doc.AddFieldMappingsAt("anchor", stored)
	doc.AddFieldMappingsAt("url", stored)
	doc.AddFieldMappingsAt("local", bleve.NewBooleanFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	return m
}

// WriteIndex adds docs to index in batches of BatchSize
func WriteIndex(index bleve.Index, docs []SymbolDoc) error {
	batch := index.NewBatch()
	for i, doc := range docs {
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.ID, err)
		}

		// Submit batch every BatchSize documents
		if (i+1)%BatchSize == 0 {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
			log.Printf("  Indexed %d/%d documents...", i+1, len(docs))
		}
	}

	// Submit remaining
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to index final batch: %w", err)
		}
	}
	return nil
}

// BuildIndex creates a new on-disk index at path holding docs.
// Any existing index at path is replaced. The returned index is open.
func BuildIndex(path string, docs []SymbolDoc) (bleve.Index, error) {
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove old index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	index, err := bleve.New(path, NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	if err := WriteIndex(index, docs); err != nil {
		index.Close()
		os.RemoveAll(path)
		return nil, err
	}
	return index, nil
}

// BuildMemIndex creates an in-memory index holding docs
func BuildMemIndex(docs []SymbolDoc) (bleve.Index, error) {
	index, err := bleve.NewMemOnly(NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory index: %w", err)
	}
	if err := WriteIndex(index, docs); err != nil {
		index.Close()
		return nil, err
	}
	return index, nil
}

// NewSymbolQuery matches text against keys, labels, contexts and keywords.
// Exact and prefix key hits are boosted above analyzed matches.
func NewSymbolQuery(text string) query.Query {
	key := strings.ToLower(strings.Join(strings.Fields(text), ""))

	exact := bleve.NewTermQuery(key)
	exact.SetField("key")
	exact.SetBoost(5)

	prefix := bleve.NewPrefixQuery(key)
	prefix.SetField("key")
	prefix.SetBoost(2)

	label := bleve.NewMatchQuery(text)
	label.SetField("label")
	label.SetBoost(1.5)

	keywords := bleve.NewMatchQuery(strings.Join(SplitIdentifier(text), " "))
	keywords.SetField("keywords")

	context := bleve.NewMatchQuery(text)
	context.SetField("context")

	scope := bleve.NewTermQuery(text)
	scope.SetField("scope")
	scope.SetBoost(0.5)

	return bleve.NewDisjunctionQuery(exact, prefix, label, keywords, context, scope)
}

// NewSymbolSearchRequest builds a request returning all stored fields
func NewSymbolSearchRequest(text string, size int) *bleve.SearchRequest {
	req := bleve.NewSearchRequest(NewSymbolQuery(text))
	req.Size = size
	req.Fields = []string{"*"}
	return req
}

// DocFromHit rebuilds a SymbolDoc from the stored fields of a hit
func DocFromHit(hit *search.DocumentMatch) SymbolDoc {
	doc := SymbolDoc{ID: hit.ID}

	doc.Key = fieldString(hit.Fields["key"])
	doc.Label = fieldString(hit.Fields["label"])
	doc.Context = fieldString(hit.Fields["context"])
	doc.Scope = fieldString(hit.Fields["scope"])
	doc.Page = fieldString(hit.Fields["page"])
	doc.Anchor = fieldString(hit.Fields["anchor"])
	doc.URL = fieldString(hit.Fields["url"])
	doc.Shard = fieldString(hit.Fields["shard"])
	if local, ok := hit.Fields["local"].(bool); ok {
		doc.Local = local
	}

	switch keywords := hit.Fields["keywords"].(type) {
	case []interface{}:
		doc.Keywords = make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if s, ok := kw.(string); ok {
				doc.Keywords = append(doc.Keywords, s)
			}
		}
	case string:
		doc.Keywords = []string{keywords}
	}

	return doc
}

func fieldString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
