package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tgui-docs/mcp-server/internal/indexing"
)

func TestInitializeDocSearch_Embedded(t *testing.T) {
	dir := withTestDataDir(t)

	if err := InitializeDocSearch(t.Context()); err != nil {
		t.Fatalf("InitializeDocSearch() error = %v", err)
	}

	catalog := indexMgr.catalog.Load()
	if catalog == nil || catalog.Len() != 19 {
		t.Fatalf("expected embedded catalog with 19 keys, got %v", catalog)
	}

	indexPtr := indexMgr.current.Load()
	if indexPtr == nil {
		t.Fatal("index not initialized")
	}
	if storage := (*indexPtr).Storage(); storage != IndexOnDisk {
		t.Errorf("Storage() = %q, want %q", storage, IndexOnDisk)
	}
	if count, _ := (*indexPtr).DocCount(); count != 57 {
		t.Errorf("DocCount() = %d, want 57", count)
	}
	if v := getIndexVersion(); v != indexing.IndexSchemaVersion {
		t.Errorf("getIndexVersion() = %d, want %d", v, indexing.IndexSchemaVersion)
	}
	if _, err := os.Stat(filepath.Join(dir, indexDir)); err != nil {
		t.Errorf("index directory missing: %v", err)
	}

	// Initializing twice is a no-op
	if err := InitializeDocSearch(t.Context()); err != nil {
		t.Fatalf("second InitializeDocSearch() error = %v", err)
	}
	if indexMgr.current.Load() != indexPtr {
		t.Error("second InitializeDocSearch() replaced the index")
	}
}

func TestInitializeDocSearch_ReusesLocalIndex(t *testing.T) {
	withTestDataDir(t)

	if err := InitializeDocSearch(t.Context()); err != nil {
		t.Fatalf("InitializeDocSearch() error = %v", err)
	}
	if err := CloseDocSearch(); err != nil {
		t.Fatalf("CloseDocSearch() error = %v", err)
	}

	indexMgr = &indexHolder{}
	if err := InitializeDocSearch(t.Context()); err != nil {
		t.Fatalf("InitializeDocSearch() reopen error = %v", err)
	}
	if count, _ := (*indexMgr.current.Load()).DocCount(); count != 57 {
		t.Errorf("DocCount() after reopen = %d, want 57", count)
	}
}

func TestInitializeDocSearch_SchemaMismatch(t *testing.T) {
	dir := withTestDataDir(t)

	// Leftover index from an older layout
	if err := os.MkdirAll(filepath.Join(dir, indexDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexVersionFile), []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := InitializeDocSearch(t.Context()); err != nil {
		t.Fatalf("InitializeDocSearch() error = %v", err)
	}
	if v := getIndexVersion(); v != indexing.IndexSchemaVersion {
		t.Errorf("getIndexVersion() = %d after rebuild, want %d", v, indexing.IndexSchemaVersion)
	}
}

func TestSearchDocumentation(t *testing.T) {
	withTestDataDir(t)

	_, output, err := SearchDocumentation(t.Context(), nil, SearchDocumentationInput{Query: "removeItem", MaxResults: 3})
	if err != nil {
		t.Fatalf("SearchDocumentation() error = %v", err)
	}
	if len(output.Results) == 0 || len(output.Results) > 3 {
		t.Fatalf("got %d results, want 1..3", len(output.Results))
	}
	top := output.Results[0].Symbol
	if top.Key != "removeitem" {
		t.Errorf("top result key = %q, want removeitem", top.Key)
	}
	if top.URL == "" || top.Page == "" {
		t.Errorf("top result missing target: %+v", top)
	}
	if output.Index != IndexOnDisk {
		t.Errorf("Index = %q, want %q", output.Index, IndexOnDisk)
	}
}

func TestSearchDocumentation_EmptyQuery(t *testing.T) {
	withTestDataDir(t)

	if _, _, err := SearchDocumentation(t.Context(), nil, SearchDocumentationInput{Query: "  "}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchDocumentation_MaxResults(t *testing.T) {
	withTestDataDir(t)

	mock := newMockIndex(1, indexing.SymbolDoc{
		ID:    "all_f/remove/0",
		Key:   "remove",
		Label: "remove",
		Scope: "tgui::BoxLayout",
		Page:  "classtgui_1_1BoxLayout.html",
		URL:   "https://tgui.eu/documentation/0.7/classtgui_1_1BoxLayout.html#a511f3f090df459bb80a4d545fea20ccd",
		Shard: "all_f",
	})
	idx := Index(mock)
	indexMgr.current.Store(&idx)

	tests := []struct {
		input int
		want  int64
	}{
		{0, 5}, // search.max_results default
		{7, 7},
		{500, maxSearchResults},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.input), func(t *testing.T) {
			_, output, err := SearchDocumentation(t.Context(), nil, SearchDocumentationInput{Query: "remove", MaxResults: tt.input})
			if err != nil {
				t.Fatalf("SearchDocumentation() error = %v", err)
			}
			if got := mock.lastSize.Load(); got != tt.want {
				t.Errorf("request size = %d, want %d", got, tt.want)
			}
			if output.Index != "mock" || output.TotalHits != 57 || len(output.Results) != 1 {
				t.Fatalf("unexpected output: %+v", output)
			}
			if got := output.Results[0].Symbol; got.Scope != "tgui::BoxLayout" || got.Shard != "all_f" || got.ID != "all_f/remove/0" {
				t.Errorf("hit mapped to %+v", got)
			}
		})
	}

	mock.searchError = errors.New("boom")
	if _, _, err := SearchDocumentation(t.Context(), nil, SearchDocumentationInput{Query: "remove"}); err == nil {
		t.Error("expected search error to propagate")
	}
}

// --- Concurrency tests with mocks ---

func TestIndexHolderConcurrentReads(t *testing.T) {
	mockIdx := newMockIndex(1)
	idx := Index(mockIdx)

	holder := &indexHolder{}
	holder.current.Store(&idx)

	const numReaders = 50
	errChan := make(chan error, numReaders)
	var done sync.WaitGroup

	for i := 0; i < numReaders; i++ {
		done.Add(1)
		go func(id int) {
			defer done.Done()

			holder.wg.Add(1)
			defer holder.wg.Done()

			indexPtr := holder.current.Load()
			if indexPtr == nil {
				errChan <- fmt.Errorf("goroutine %d: got nil index", id)
				return
			}
			count, err := (*indexPtr).DocCount()
			if err != nil {
				errChan <- fmt.Errorf("goroutine %d: DocCount failed: %v", id, err)
				return
			}
			if count != 57 {
				errChan <- fmt.Errorf("goroutine %d: expected 57, got %d", id, count)
			}
		}(i)
	}

	done.Wait()
	close(errChan)
	for err := range errChan {
		t.Error(err)
	}

	holder.wg.Wait() // Should return immediately
}

func TestSwapIndex_ClosesOldAfterDrain(t *testing.T) {
	withTestDataDir(t)

	oldMock := newMockIndex(1)
	oldIdx := Index(oldMock)
	indexMgr.current.Store(&oldIdx)

	// A search is in flight on the old index
	indexMgr.wg.Add(1)

	newMock := newMockIndex(2)
	newIdx := Index(newMock)
	swapIndex(&newIdx)

	if got := indexMgr.current.Load(); got != &newIdx {
		t.Fatal("swapIndex did not publish the new index")
	}

	time.Sleep(50 * time.Millisecond)
	if oldMock.IsClosed() {
		t.Fatal("old index closed while a search was in flight")
	}

	indexMgr.wg.Done()

	deadline := time.Now().Add(2 * time.Second)
	for !oldMock.IsClosed() {
		if time.Now().After(deadline) {
			t.Fatal("old index not closed after searches drained")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if newMock.IsClosed() {
		t.Error("new index should stay open")
	}
}

func TestIndexHolderConcurrentSwapAndRead(t *testing.T) {
	mockIdx := newMockIndex(0)
	idx := Index(mockIdx)

	holder := &indexHolder{}
	holder.current.Store(&idx)

	const numReaders = 20
	const iterations = 5
	errChan := make(chan error, numReaders)
	var done sync.WaitGroup

	for i := 0; i < numReaders; i++ {
		done.Add(1)
		go func(id int) {
			defer done.Done()

			for j := 0; j < iterations; j++ {
				holder.wg.Add(1)
				indexPtr := holder.current.Load()
				if indexPtr == nil {
					holder.wg.Done()
					errChan <- fmt.Errorf("reader %d iteration %d: got nil", id, j)
					return
				}
				_, err := (*indexPtr).DocCount()
				holder.wg.Done()

				if err != nil {
					errChan <- fmt.Errorf("reader %d iteration %d: %v", id, j, err)
					return
				}
			}
		}(i)
	}

	done.Add(1)
	go func() {
		defer done.Done()
		for i := 0; i < 3; i++ {
			newIdx := Index(newMockIndex(i + 1))
			holder.current.Swap(&newIdx)
		}
	}()

	done.Wait()
	close(errChan)
	for err := range errChan {
		t.Error(err)
	}
	holder.wg.Wait()
}

func TestIndexHolderRefreshMutexSerialization(t *testing.T) {
	holder := &indexHolder{}

	const numGoroutines = 10
	counter := 0
	var done sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		done.Add(1)
		go func() {
			defer done.Done()

			holder.refreshMu.Lock()
			defer holder.refreshMu.Unlock()

			old := counter
			time.Sleep(time.Millisecond)
			counter = old + 1
		}()
	}
	done.Wait()

	if counter != numGoroutines {
		t.Errorf("Expected counter=%d, got %d (mutex not properly serializing)", numGoroutines, counter)
	}
}

func TestCloseDocSearch(t *testing.T) {
	withTestDataDir(t)

	mock := newMockIndex(1)
	idx := Index(mock)
	indexMgr.current.Store(&idx)
	if err := acquireLock(); err != nil {
		t.Fatal(err)
	}

	if err := CloseDocSearch(); err != nil {
		t.Fatalf("CloseDocSearch() error = %v", err)
	}
	if !mock.IsClosed() {
		t.Error("index should be closed")
	}
	if indexMgr.current.Load() != nil || indexMgr.catalog.Load() != nil {
		t.Error("holder should be cleared")
	}
	if _, err := os.Stat(lockPath()); !os.IsNotExist(err) {
		t.Error("lock should be released")
	}
}
