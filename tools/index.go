package tools

import "github.com/blevesearch/bleve/v2"

// Where a symbol index lives
const (
	IndexOnDisk   = "disk"
	IndexInMemory = "memory"
)

// Index abstracts the bleve operations the tools need so tests can swap in mocks
type Index interface {
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)
	DocCount() (uint64, error)
	Close() error

	// Storage reports IndexOnDisk or IndexInMemory
	Storage() string
}

type bleveIndex struct {
	bleve.Index
	storage string
}

// NewBleveIndexWrapper wraps a bleve.Index opened from the given storage
func NewBleveIndexWrapper(index bleve.Index, storage string) Index {
	return &bleveIndex{Index: index, storage: storage}
}

func (w *bleveIndex) Storage() string {
	return w.storage
}
