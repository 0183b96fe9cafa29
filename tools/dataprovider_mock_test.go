package tools

import (
	"io/fs"
	"testing/fstest"
)

// MockDataProvider serves shard files from memory
type MockDataProvider struct {
	files fstest.MapFS
}

func NewMockDataProvider() *MockDataProvider {
	return &MockDataProvider{files: fstest.MapFS{}}
}

// AddFile stores content under name, e.g. "data/search/all_0.js"
func (m *MockDataProvider) AddFile(name string, content []byte) {
	m.files[name] = &fstest.MapFile{Data: content, Mode: 0644}
}

func (m *MockDataProvider) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(m.files, name)
}

func (m *MockDataProvider) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(m.files, name)
}
