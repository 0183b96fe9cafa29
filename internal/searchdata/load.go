package searchdata

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency bounds how many shards are parsed at once
const DefaultLoadConcurrency = 8

// LoadDir parses every *.js shard in dir
func LoadDir(ctx context.Context, dir string) ([]*Shard, error) {
	return LoadFS(ctx, os.DirFS(dir), ".")
}

// LoadFS parses every *.js shard in dir of fsys. Shards are returned sorted
// by file name regardless of parse completion order. Files Doxygen ships
// next to the data (search.js, searchdata.js) are skipped.
func LoadFS(ctx context.Context, fsys fs.FS, dir string) ([]*Shard, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read shard directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".js") || skipFile(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	shards := make([]*Shard, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultLoadConcurrency)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, path.Join(dir, name))
			if err != nil {
				return fmt.Errorf("failed to read shard %s: %w", name, err)
			}
			shard, err := ParseBytes(data)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			shard.ID = ParseShardID(name)
			shards[i] = shard
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return shards, nil
}

// LoadCatalog loads a shard directory and merges it
func LoadCatalog(ctx context.Context, fsys fs.FS, dir string) (*Catalog, error) {
	shards, err := LoadFS(ctx, fsys, dir)
	if err != nil {
		return nil, err
	}
	return NewCatalog(shards...), nil
}

func skipFile(name string) bool {
	switch name {
	case "search.js", "searchdata.js", "nomatches.js":
		return true
	}
	return false
}
