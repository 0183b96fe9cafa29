package tools

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tgui-docs/mcp-server/internal/indexing"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

const (
	indexDir         = "search/index"
	indexVersionFile = "search/.index_version"

	// maxSearchResults caps max_results on search_documentation
	maxSearchResults = 20
)

// SearchResult represents a search hit with score
type SearchResult struct {
	Symbol indexing.SymbolDoc `json:"symbol"`
	Score  float64            `json:"score"`
}

// SearchDocumentationInput defines input for search_documentation tool
type SearchDocumentationInput struct {
	Query      string `json:"query" jsonschema:"Free text query, e.g. 'remove widget from container' or 'ListBox removeItem'"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results (optional, defaults to the configured search.max_results)"`
}

// SearchDocumentationOutput defines output for search_documentation tool
type SearchDocumentationOutput struct {
	Results   []SearchResult `json:"results"`
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
	Index     string         `json:"index"`
}

// indexHolder manages concurrent access to the symbol catalog and its bleve index
type indexHolder struct {
	// current holds the active index pointer (atomic access for lock-free reads)
	current atomic.Pointer[Index]

	// catalog is swapped together with current on refresh
	catalog atomic.Pointer[searchdata.Catalog]

	// refreshMu serializes init and refresh; searches and lookups never take it
	refreshMu sync.Mutex

	// wg tracks in-flight searches so a replaced index is closed only after they finish
	wg sync.WaitGroup
}

var indexMgr = &indexHolder{}

// InitializeDocSearch loads the catalog and opens (or builds) the search index.
// Priority: cached shards from the last refresh > embedded shards.
func InitializeDocSearch(ctx context.Context) error {
	indexMgr.refreshMu.Lock()
	defer indexMgr.refreshMu.Unlock()

	if indexMgr.current.Load() != nil {
		return nil
	}

	startTime := time.Now()
	log.Printf("Initializing documentation search...")

	lockStart := time.Now()
	if err := acquireLock(); err != nil {
		return fmt.Errorf("failed to acquire index lock: %w", err)
	}
	log.Printf("Lock acquired in %v", time.Since(lockStart).Round(time.Millisecond))

	catalog, source, err := LoadCatalog(ctx)
	if err != nil {
		return err
	}
	indexMgr.catalog.Store(catalog)
	log.Printf("✓ Catalog loaded: %d keys, %d occurrences from %d %s shard(s)",
		catalog.Len(), catalog.Occurrences(), len(catalog.Shards()), source)

	indexPath := filepath.Join(dataDir, indexDir)

	// Reuse the on-disk index when it matches the current schema
	if _, err := os.Stat(indexPath); err == nil {
		if version := getIndexVersion(); version != indexing.IndexSchemaVersion {
			log.Printf("Index schema version mismatch (have: v%d, want: v%d), rebuilding...",
				version, indexing.IndexSchemaVersion)
		} else if index, err := bleve.Open(indexPath); err == nil {
			wrapped := NewBleveIndexWrapper(index, IndexOnDisk)
			indexMgr.current.Store(&wrapped)
			count, _ := wrapped.DocCount()
			log.Printf("✓ Documentation search initialized (%d docs, local index v%d) in %v",
				count, indexing.IndexSchemaVersion, time.Since(startTime).Round(time.Millisecond))
			if needsRefresh() {
				log.Printf("Local search data is older than %v. Consider using refresh_documentation_index to update.",
					currentConfig().CacheTTL())
			}
			return nil
		} else {
			log.Printf("Warning: Local index corrupted (%v), rebuilding...", err)
		}
	}

	docs := indexing.BuildDocuments(catalog, currentConfig().Docs.BaseURL)
	if err := indexDocuments(docs); err != nil {
		log.Printf("Warning: Could not build on-disk index: %v", err)
		log.Printf("Falling back to in-memory index")

		index, err := indexing.BuildMemIndex(docs)
		if err != nil {
			return fmt.Errorf("failed to build search index: %w", err)
		}
		wrapped := NewBleveIndexWrapper(index, IndexInMemory)
		swapIndex(&wrapped)
	}

	log.Printf("✓ Documentation search initialized (%d docs, %s shards) in %v",
		len(docs), source, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// getIndexVersion reads the current index schema version from disk
func getIndexVersion() int {
	data, err := os.ReadFile(filepath.Join(dataDir, indexVersionFile))
	if err != nil {
		return 0 // No version file = unknown layout
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return version
}

// writeIndexVersion writes the current index schema version to disk
func writeIndexVersion() error {
	versionPath := filepath.Join(dataDir, indexVersionFile)
	if err := os.MkdirAll(filepath.Dir(versionPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(versionPath, []byte(strconv.Itoa(indexing.IndexSchemaVersion)), 0644)
}

// indexDocuments builds a fresh on-disk index in a temp location, moves it
// into place and swaps it in for searches.
func indexDocuments(docs []indexing.SymbolDoc) error {
	startTime := time.Now()
	indexPath := filepath.Join(dataDir, indexDir)
	tempIndexPath := indexPath + ".tmp"

	log.Printf("Creating new index with %d documents in temp location...", len(docs))
	newIndex, err := indexing.BuildIndex(tempIndexPath, docs)
	if err != nil {
		return fmt.Errorf("failed to build temp index: %w", err)
	}
	if err := newIndex.Close(); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to close temp index: %w", err)
	}
	log.Printf("Indexed %d documents in %v", len(docs), time.Since(startTime).Round(time.Millisecond))

	// Searches keep using the old index (held open) while the directory is replaced
	if err := os.RemoveAll(indexPath); err != nil && !os.IsNotExist(err) {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to remove old index: %w", err)
	}
	if err := os.Rename(tempIndexPath, indexPath); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to rename temp index: %w", err)
	}

	finalIndex, err := bleve.Open(indexPath)
	if err != nil {
		return fmt.Errorf("failed to open new index: %w", err)
	}
	wrapped := NewBleveIndexWrapper(finalIndex, IndexOnDisk)
	swapIndex(&wrapped)

	if err := writeIndexVersion(); err != nil {
		log.Printf("Warning: Failed to write index version: %v", err)
	}

	log.Printf("✓ Index swap completed in %v, searches now using new index",
		time.Since(startTime).Round(time.Millisecond))
	return nil
}

// swapIndex publishes next and closes the previous index once in-flight
// searches drain.
func swapIndex(next *Index) {
	holder := indexMgr
	old := holder.current.Swap(next)
	if old == nil {
		return
	}

	go func(oldPtr *Index) {
		waitStart := time.Now()
		holder.wg.Wait()

		if err := (*oldPtr).Close(); err != nil {
			log.Printf("Warning: Error closing old index: %v", err)
			return
		}
		log.Printf("✓ Old index closed (waited %v for in-flight searches)",
			time.Since(waitStart).Round(time.Millisecond))
	}(old)
}

// ensureDocSearch initializes search on first use if startup init failed
func ensureDocSearch(ctx context.Context) (*Index, error) {
	if indexPtr := indexMgr.current.Load(); indexPtr != nil {
		return indexPtr, nil
	}

	log.Printf("Doc index not initialized, initializing now...")
	if err := InitializeDocSearch(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize documentation index: %w", err)
	}
	indexPtr := indexMgr.current.Load()
	if indexPtr == nil {
		return nil, fmt.Errorf("index still nil after initialization")
	}
	return indexPtr, nil
}

// SearchDocumentation runs a full-text query over all indexed symbols
func SearchDocumentation(ctx context.Context, req *mcp.CallToolRequest, input SearchDocumentationInput) (*mcp.CallToolResult, SearchDocumentationOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchDocumentationOutput{}, fmt.Errorf("query is required")
	}

	// Track in-flight searches for graceful cleanup (MUST be before Load)
	indexMgr.wg.Add(1)
	defer indexMgr.wg.Done()

	indexPtr, err := ensureDocSearch(ctx)
	if err != nil {
		return nil, SearchDocumentationOutput{}, err
	}
	index := *indexPtr

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = currentConfig().Search.MaxResults
	}
	if maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}

	searchResults, err := index.Search(indexing.NewSymbolSearchRequest(input.Query, maxResults))
	if err != nil {
		return nil, SearchDocumentationOutput{}, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		results = append(results, SearchResult{
			Symbol: indexing.DocFromHit(hit),
			Score:  hit.Score,
		})
	}

	output := SearchDocumentationOutput{
		Results:   results,
		Query:     input.Query,
		TotalHits: int(searchResults.Total),
		Index:     index.Storage(),
	}
	return nil, output, nil
}

// RegisterDocSearchTools registers search_documentation and refresh_documentation_index
func RegisterDocSearchTools(ctx context.Context, server *mcp.Server) error {
	if err := InitializeDocSearch(ctx); err != nil {
		log.Printf("Warning: Documentation search initialization failed: %v", err)
		log.Printf("Documentation search will attempt to initialize on first use")
	}

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_documentation",
			Description: "Full-text search over TGUI API symbols (classes, members, functions). Matches identifiers, display labels and enclosing scopes; returns symbols with their documentation page, anchor and URL.",
		},
		SearchDocumentation,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "refresh_documentation_index",
			Description: "Re-download the configured Doxygen search data files and rebuild the symbol catalog and search index (skipped while the local copy is fresh unless force is set)",
		},
		RefreshDocumentationIndex,
	)

	return nil
}

// CloseDocSearch closes the search index and releases the lock
func CloseDocSearch() error {
	var closeErr error

	// Swap to nil first so no new search picks up the index
	if indexPtr := indexMgr.current.Swap(nil); indexPtr != nil {
		log.Printf("Waiting for in-flight searches to complete before closing...")
		indexMgr.wg.Wait()

		if closeErr = (*indexPtr).Close(); closeErr != nil {
			log.Printf("Error closing doc index: %v", closeErr)
		} else {
			log.Printf("✓ Doc index closed successfully")
		}
	}
	indexMgr.catalog.Store(nil)

	// Always attempt to release inter-process lock, even if close failed
	if err := releaseLock(); err != nil {
		log.Printf("Error releasing lock: %v", err)
		if closeErr == nil {
			closeErr = err
		}
	}

	return closeErr
}
