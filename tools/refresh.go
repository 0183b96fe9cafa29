package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tgui-docs/mcp-server/internal/cache"
	"github.com/tgui-docs/mcp-server/internal/config"
	"github.com/tgui-docs/mcp-server/internal/indexing"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
	"golang.org/x/sync/errgroup"
)

// maxShardSize bounds a single downloaded shard
const maxShardSize = 16 << 20

// errShardNotFound marks buckets the generator did not emit
var errShardNotFound = errors.New("shard not found")

// RefreshDocumentationIndexInput defines input for refresh_documentation_index tool
type RefreshDocumentationIndexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"Force re-download and re-indexing (optional, defaults to false)"`
}

// RefreshDocumentationIndexOutput defines output for refresh_documentation_index tool
type RefreshDocumentationIndexOutput struct {
	Updated        bool      `json:"updated"`
	LastUpdate     time.Time `json:"last_update"`
	ShardsLoaded   int       `json:"shards_loaded"`
	SymbolsLoaded  int       `json:"symbols_loaded"`
	SymbolsIndexed int       `json:"symbols_indexed"`
	Message        string    `json:"message"`
}

// refreshStats summarizes a completed refresh
type refreshStats struct {
	shards    int
	keys      int
	documents int
	updated   time.Time
}

// needsRefresh reports whether the cached shards are missing or older than the TTL
func needsRefresh() bool {
	manifest, err := cache.New(cacheDir()).LoadManifest()
	if err != nil || len(manifest.Shards) == 0 {
		return true
	}
	return manifest.Stale(currentConfig().CacheTTL(), time.Now())
}

// lastUpdate returns when the cached shards were downloaded
func lastUpdate() (time.Time, bool) {
	manifest, err := cache.New(cacheDir()).LoadManifest()
	if err != nil || len(manifest.Shards) == 0 {
		return time.Time{}, false
	}
	return manifest.Updated, true
}

// shardURL resolves a shard file name against the documentation root
func shardURL(baseURL, name string) (string, error) {
	return url.JoinPath(baseURL, "search", name)
}

// downloadShard fetches a single shard file
func downloadShard(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errShardNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxShardSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxShardSize {
		return nil, fmt.Errorf("shard exceeds %d bytes", maxShardSize)
	}
	return data, nil
}

// downloadShards fetches the configured shard files with bounded parallelism.
// Missing buckets are skipped; any other failure aborts the whole download.
func downloadShards(ctx context.Context, cfg *config.Config) (map[string][]byte, error) {
	client := &http.Client{Timeout: cfg.Refresh.Timeout}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Refresh.Concurrency)

	var mu sync.Mutex
	files := make(map[string][]byte, len(cfg.Docs.Shards))

	for _, name := range cfg.Docs.Shards {
		g.Go(func() error {
			target, err := shardURL(cfg.Docs.BaseURL, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			data, err := downloadShard(ctx, client, target)
			if errors.Is(err, errShardNotFound) {
				log.Printf("Warning: %s not found, skipping", target)
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			mu.Lock()
			files[name] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// refreshDocumentationIndex downloads the shards and rebuilds catalog and index
func refreshDocumentationIndex(ctx context.Context, force bool) (*refreshStats, error) {
	startTime := time.Now()

	if !force && !needsRefresh() {
		log.Printf("Search data cache is fresh, skipping refresh")
		return nil, nil
	}

	indexMgr.refreshMu.Lock()
	defer indexMgr.refreshMu.Unlock()

	// Another goroutine may have refreshed while we were waiting
	if !force && !needsRefresh() {
		log.Printf("Search data was refreshed by another goroutine, skipping")
		return nil, nil
	}

	cfg := currentConfig()
	log.Printf("Starting search data refresh from %s (force=%v)...", cfg.Docs.BaseURL, force)

	// Lock stays held until CloseDocSearch
	if err := acquireLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock for refresh: %w", err)
	}

	downloadStart := time.Now()
	files, err := downloadShards(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no search data files found under %s", cfg.Docs.BaseURL)
	}
	log.Printf("Downloaded %d shard(s) in %v", len(files), time.Since(downloadStart).Round(time.Millisecond))

	// Parse before caching so a broken download never replaces good data
	shards, err := parseShardFiles(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}

	store := cache.New(cacheDir())
	manifest := &cache.Manifest{
		BaseURL: cfg.Docs.BaseURL,
		Updated: time.Now().UTC(),
		Shards:  make(map[string]string, len(files)),
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		hash, err := store.Write(files[name])
		if err != nil {
			return nil, fmt.Errorf("failed to cache %s: %w", name, err)
		}
		manifest.Shards[name] = hash
	}

	catalog := searchdata.NewCatalog(shards...)
	docs := indexing.BuildDocuments(catalog, cfg.Docs.BaseURL)
	if err := indexDocuments(docs); err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}
	indexMgr.catalog.Store(catalog)

	// Written last so an interrupted refresh is retried
	if err := store.SaveManifest(manifest); err != nil {
		return nil, fmt.Errorf("failed to save cache manifest: %w", err)
	}

	log.Printf("✓ Search data refresh completed in %v (%d keys, %d documents)",
		time.Since(startTime).Round(time.Millisecond), catalog.Len(), len(docs))

	return &refreshStats{
		shards:    len(shards),
		keys:      catalog.Len(),
		documents: len(docs),
		updated:   manifest.Updated,
	}, nil
}

// RefreshDocumentationIndex re-downloads search data when stale or forced
func RefreshDocumentationIndex(ctx context.Context, req *mcp.CallToolRequest, input RefreshDocumentationIndexInput) (*mcp.CallToolResult, RefreshDocumentationIndexOutput, error) {
	output := RefreshDocumentationIndexOutput{}

	stats, err := refreshDocumentationIndex(ctx, input.Force)
	if err != nil {
		return nil, output, fmt.Errorf("refresh failed: %w", err)
	}

	if catalog := indexMgr.catalog.Load(); catalog != nil {
		output.ShardsLoaded = len(catalog.Shards())
		output.SymbolsLoaded = catalog.Len()
	}
	if indexPtr := indexMgr.current.Load(); indexPtr != nil {
		count, _ := (*indexPtr).DocCount()
		output.SymbolsIndexed = int(count)
	}

	if stats == nil {
		updated, _ := lastUpdate()
		output.LastUpdate = updated
		output.Message = fmt.Sprintf("Cache is fresh (last updated: %s)", updated.Format(time.RFC3339))
		return nil, output, nil
	}

	output.Updated = true
	output.LastUpdate = stats.updated
	output.Message = fmt.Sprintf("Search data refreshed: %d shard(s), %d keys, %d symbols indexed",
		stats.shards, stats.keys, stats.documents)
	return nil, output, nil
}
