package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tgui-docs/mcp-server/internal/config"
	"github.com/tgui-docs/mcp-server/internal/indexing"
	"github.com/tgui-docs/mcp-server/internal/searchdata"
)

func main() {
	if len(os.Args) < 3 || len(os.Args) > 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <search-dir> <index-dir> [base-url]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s html/search data/search/index https://tgui.eu/documentation/0.7/\n", os.Args[0])
		os.Exit(1)
	}

	searchDir := os.Args[1]
	indexDir := os.Args[2]
	baseURL := config.Default().Docs.BaseURL
	if len(os.Args) == 4 {
		baseURL = os.Args[3]
	}

	log.Printf("TGUI Symbol Indexer v%d", indexing.IndexSchemaVersion)
	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	log.Printf("Loading search data: %s", searchDir)
	shards, err := searchdata.LoadDir(context.Background(), searchDir)
	if err != nil {
		log.Fatalf("Failed to load search data: %v", err)
	}
	catalog := searchdata.NewCatalog(shards...)
	log.Printf("✓ Loaded %d shard(s): %d keys, %d occurrences", len(shards), catalog.Len(), catalog.Occurrences())

	for _, shard := range shards {
		for _, ve := range searchdata.ValidationErrors(shard.Validate()) {
			log.Printf("Warning: %s: %v", shard.ID, ve)
		}
	}

	docs := indexing.BuildDocuments(catalog, baseURL)

	if err := os.MkdirAll(filepath.Dir(indexDir), 0755); err != nil {
		log.Fatalf("Failed to create index directory: %v", err)
	}

	log.Printf("Creating search index: %s", indexDir)
	index, err := indexing.BuildIndex(indexDir, docs)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	if err := index.Close(); err != nil {
		log.Fatalf("Failed to close index: %v", err)
	}
	log.Printf("✓ Indexed %d symbols successfully", len(docs))

	versionFile := filepath.Join(filepath.Dir(indexDir), ".index_version")
	if err := os.WriteFile(versionFile, []byte(strconv.Itoa(indexing.IndexSchemaVersion)), 0644); err != nil {
		log.Printf("Warning: Failed to write version file: %v", err)
	} else {
		log.Printf("✓ Index schema version: v%d", indexing.IndexSchemaVersion)
	}

	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✓ Indexing complete!")
	log.Printf("")
	log.Printf("Index details:")
	log.Printf("  Location: %s", indexDir)
	log.Printf("  Keys:     %d", catalog.Len())
	log.Printf("  Symbols:  %d", len(docs))
	log.Printf("  Scopes:   %d", indexing.CountScopes(docs))
	log.Printf("  Base URL: %s", baseURL)
}
