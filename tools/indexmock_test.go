package tools

import (
	"errors"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/tgui-docs/mcp-server/internal/indexing"
)

var errMockClosed = errors.New("mock index closed")

// mockIndex answers every query with a fixed list of symbols
type mockIndex struct {
	generation  int
	symbols     []indexing.SymbolDoc
	total       uint64
	searchError error
	closed      atomic.Bool
	lastSize    atomic.Int64
}

// newMockIndex reports 57 documents, the occurrence count of the all_f shard
func newMockIndex(generation int, symbols ...indexing.SymbolDoc) *mockIndex {
	return &mockIndex{generation: generation, symbols: symbols, total: 57}
}

func (m *mockIndex) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	if m.closed.Load() {
		return nil, errMockClosed
	}
	if m.searchError != nil {
		return nil, m.searchError
	}
	m.lastSize.Store(int64(req.Size))

	hits := make(search.DocumentMatchCollection, 0, len(m.symbols))
	for i, doc := range m.symbols {
		if i >= req.Size {
			break
		}
		hits = append(hits, &search.DocumentMatch{
			ID:    doc.ID,
			Score: float64(len(m.symbols) - i),
			Fields: map[string]interface{}{
				"key":   doc.Key,
				"label": doc.Label,
				"scope": doc.Scope,
				"page":  doc.Page,
				"url":   doc.URL,
				"shard": doc.Shard,
			},
		})
	}
	return &bleve.SearchResult{Request: req, Hits: hits, Total: m.total}, nil
}

func (m *mockIndex) DocCount() (uint64, error) {
	if m.closed.Load() {
		return 0, errMockClosed
	}
	return m.total, nil
}

func (m *mockIndex) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return errMockClosed
	}
	return nil
}

func (m *mockIndex) Storage() string { return "mock" }

func (m *mockIndex) IsClosed() bool { return m.closed.Load() }
