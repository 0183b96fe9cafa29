package tools

import (
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/tgui-docs/mcp-server/internal/config"
)

var (
	dataDir string // Data directory for the shard cache and search index

	settings atomic.Pointer[config.Config]
)

func init() {
	dataDir = resolveDataDir()
}

// resolveDataDir picks where the server keeps its cache and index:
// ~/.tguidoc-mcp, then <binary>/../data, then ./data.
func resolveDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userDataDir := filepath.Join(homeDir, ".tguidoc-mcp")

		if info, err := os.Stat(userDataDir); err == nil && info.IsDir() {
			log.Printf("✓ Data directory: %s (user home)", userDataDir)
			return userDataDir
		}
		err := os.MkdirAll(filepath.Join(userDataDir, "search"), 0755)
		if err == nil {
			log.Printf("✓ Data directory created: %s", userDataDir)
			return userDataDir
		}
		log.Printf("Warning: Could not create user data directory at %s: %v", userDataDir, err)
	} else {
		log.Printf("Warning: Could not determine user home directory: %v", err)
	}

	// Binary at: <root>/bin/tguidoc-mcp, data at: <root>/data
	if execPath, err := os.Executable(); err == nil {
		relative := filepath.Join(filepath.Dir(execPath), "..", "data")
		if info, err := os.Stat(relative); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(relative)
			log.Printf("✓ Data directory: %s (relative to binary)", abs)
			return abs
		}
	}

	fallback := filepath.Join(".", "data")
	log.Printf("Warning: Data directory (fallback): %s", fallback)
	os.MkdirAll(filepath.Join(fallback, "search"), 0755)
	return fallback
}

// Configure installs cfg for all tools. A non-empty DataDir overrides the
// resolved data directory; call before registering tools.
func Configure(cfg *config.Config) {
	if cfg.DataDir != "" {
		dataDir = cfg.DataDir
		if err := os.MkdirAll(filepath.Join(dataDir, "search"), 0755); err != nil {
			log.Printf("Warning: Could not create data directory %s: %v", dataDir, err)
		}
		log.Printf("✓ Data directory: %s (config)", dataDir)
	}
	settings.Store(cfg)
}

// currentConfig returns the configured settings or the built-in defaults
func currentConfig() *config.Config {
	if cfg := settings.Load(); cfg != nil {
		return cfg
	}
	cfg := config.Default()
	settings.CompareAndSwap(nil, cfg)
	return settings.Load()
}

func cacheDir() string {
	return filepath.Join(dataDir, "cache")
}
