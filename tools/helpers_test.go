package tools

import (
	"testing"

	"github.com/tgui-docs/mcp-server/internal/config"
)

// withTestDataDir points the package at an empty data directory and a fresh
// index holder for the duration of the test
func withTestDataDir(t *testing.T) string {
	t.Helper()

	oldDataDir, oldMgr := dataDir, indexMgr
	dataDir = t.TempDir()
	indexMgr = &indexHolder{}

	t.Cleanup(func() {
		if err := CloseDocSearch(); err != nil {
			t.Logf("CloseDocSearch: %v", err)
		}
		indexMgr.wg.Wait()
		dataDir, indexMgr = oldDataDir, oldMgr
	})
	return dataDir
}

// withConfig installs cfg until the test ends
func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	old := settings.Load()
	settings.Store(cfg)
	t.Cleanup(func() { settings.Store(old) })
}
