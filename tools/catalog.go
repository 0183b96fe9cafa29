package tools

import (
	"context"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/tgui-docs/mcp-server/internal/cache"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

// Catalog sources reported by LoadCatalog
const (
	SourceCache    = "cache"
	SourceEmbedded = "embedded"
)

// LoadCatalog builds the symbol catalog from the local shard cache,
// falling back to the embedded shards when nothing has been downloaded.
func LoadCatalog(ctx context.Context) (*searchdata.Catalog, string, error) {
	shards, err := loadCachedShards(ctx)
	if err != nil {
		log.Printf("Warning: Ignoring shard cache: %v", err)
	}
	if len(shards) > 0 {
		return searchdata.NewCatalog(shards...), SourceCache, nil
	}

	shards, err = loadEmbeddedShards(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load embedded search data: %w", err)
	}
	return searchdata.NewCatalog(shards...), SourceEmbedded, nil
}

// loadCachedShards parses every shard recorded in the cache manifest
func loadCachedShards(ctx context.Context) ([]*searchdata.Shard, error) {
	store := cache.New(cacheDir())
	manifest, err := store.LoadManifest()
	if err != nil {
		return nil, err
	}
	files, err := store.Files(manifest)
	if err != nil {
		return nil, err
	}
	return parseShardFiles(ctx, files)
}

// loadEmbeddedShards parses the shards compiled into the binary
func loadEmbeddedShards(ctx context.Context) ([]*searchdata.Shard, error) {
	entries, err := defaultDataProvider.ReadDir(embeddedSearchDir)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".js") {
			continue
		}
		data, err := defaultDataProvider.ReadFile(path.Join(embeddedSearchDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded file %s: %w", entry.Name(), err)
		}
		files[entry.Name()] = data
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no search data files in %s", embeddedSearchDir)
	}
	return parseShardFiles(ctx, files)
}

// parseShardFiles parses files keyed by shard file name, in name order
func parseShardFiles(ctx context.Context, files map[string][]byte) ([]*searchdata.Shard, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	shards := make([]*searchdata.Shard, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shard, err := searchdata.ParseBytes(files[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		shard.ID = searchdata.ParseShardID(name)
		if err := shard.Validate(); err != nil {
			log.Printf("Warning: %s has %d invariant violation(s)", name, len(searchdata.ValidationErrors(err)))
		}
		shards = append(shards, shard)
	}
	return shards, nil
}
