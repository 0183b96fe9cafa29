package tools

import (
	"errors"
	"io/fs"
	"testing"
)

func TestEmbeddedDataProvider(t *testing.T) {
	provider := NewEmbeddedDataProvider()

	entries, err := provider.ReadDir(embeddedSearchDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Name() == "all_f.js" {
			found = true
		}
	}
	if !found {
		t.Fatalf("all_f.js not embedded, got %d entries", len(entries))
	}

	data, err := provider.ReadFile(embeddedSearchDir + "/all_f.js")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("embedded shard is empty")
	}
}

func TestMockDataProvider(t *testing.T) {
	mock := NewMockDataProvider()
	mock.AddFile("data/search/all_0.js", []byte("var searchData=[];"))
	mock.AddFile("data/search/all_1.js", []byte("var searchData=[];"))

	content, err := mock.ReadFile("data/search/all_0.js")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "var searchData=[];" {
		t.Errorf("ReadFile() = %q", content)
	}

	if _, err := mock.ReadFile("data/search/missing.js"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want fs.ErrNotExist", err)
	}

	entries, err := mock.ReadDir("data/search")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Name() != "all_0.js" || entries[0].IsDir() {
		t.Errorf("ReadDir() = %v", entries)
	}

	if _, err := mock.ReadDir("data/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadDir(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestSetDefaultDataProvider(t *testing.T) {
	mock := NewMockDataProvider()
	mock.AddFile("data/search/all_0.js", []byte("var searchData=[];"))

	SetDefaultDataProvider(mock)
	defer ResetDefaultDataProvider()

	if _, err := defaultDataProvider.ReadFile("data/search/all_0.js"); err != nil {
		t.Fatalf("ReadFile() via default provider error = %v", err)
	}

	ResetDefaultDataProvider()
	if defaultDataProvider == DataProvider(mock) {
		t.Error("ResetDefaultDataProvider() kept the mock")
	}
}
