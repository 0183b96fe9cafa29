package tools

import (
	"io/fs"
)

// DataProvider gives read access to the search data shipped with the binary.
// Paths are slash separated and relative to the package, e.g.
// "data/search/all_f.js".
type DataProvider interface {
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// SetDefaultDataProvider replaces the source of embedded shards.
// Tests use it to load a catalog from hand-written shards.
func SetDefaultDataProvider(provider DataProvider) {
	defaultDataProvider = provider
}

// ResetDefaultDataProvider switches back to the shards compiled into the binary
func ResetDefaultDataProvider() {
	defaultDataProvider = NewEmbeddedDataProvider()
}
