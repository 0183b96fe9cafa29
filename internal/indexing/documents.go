package indexing

import (
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

// BuildDocuments flattens every catalog occurrence into a SymbolDoc.
// baseURL is the documentation root (the directory holding search/);
// when empty, URLs keep the shard-relative target.
func BuildDocuments(catalog *searchdata.Catalog, baseURL string) []SymbolDoc {
	docs := make([]SymbolDoc, 0, catalog.Occurrences())

	for _, entry := range catalog.Entries() {
		shard := ""
		if sources := catalog.Sources(entry.Key); len(sources) > 0 {
			shard = sources[0].String()
		}

		for i, occ := range entry.Occurrences {
			docs = append(docs, NewSymbolDoc(shard, entry, i, occ, baseURL))
		}
	}

	return docs
}

// NewSymbolDoc builds the document for the position-th occurrence of entry
func NewSymbolDoc(shard string, entry searchdata.Entry, position int, occ searchdata.Occurrence, baseURL string) SymbolDoc {
	page, anchor := SplitTarget(occ.Target)
	context := occ.DisplayContext()

	return SymbolDoc{
		ID:       DocumentID(shard, entry.Key, position),
		Key:      entry.Key,
		Label:    entry.Label,
		Context:  context,
		Scope:    occ.Scope(entry.Label),
		Page:     page,
		Anchor:   anchor,
		URL:      ResolveURL(baseURL, occ.Target),
		Local:    occ.Local,
		Shard:    shard,
		Keywords: ExtractKeywords(entry.Label, context),
	}
}

// CountScopes returns how many distinct scopes the documents cover
func CountScopes(docs []SymbolDoc) int {
	scopes := make(map[string]struct{})
	for _, doc := range docs {
		if doc.Scope != "" {
			scopes[doc.Scope] = struct{}{}
		}
	}
	return len(scopes)
}
