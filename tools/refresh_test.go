package tools

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tgui-docs/mcp-server/internal/cache"
	"github.com/tgui-docs/mcp-server/internal/config"
)

// newShardServer serves the embedded all_f.js fixture under /docs/search/
// and answers 404 for every other path
func newShardServer(t *testing.T) (*httptest.Server, []byte, *atomic.Int32) {
	t.Helper()

	fixture, err := os.ReadFile(filepath.Join("data", "search", "all_f.js"))
	if err != nil {
		t.Fatal(err)
	}

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/docs/search/all_f.js" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/javascript")
		w.Write(fixture)
	}))
	t.Cleanup(srv.Close)
	return srv, fixture, &requests
}

func testRefreshConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Docs.BaseURL = baseURL
	cfg.Docs.Shards = []string{"all_e.js", "all_f.js"}
	cfg.Refresh.Timeout = 5 * time.Second
	return cfg
}

func TestShardURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://tgui.eu/documentation/0.7/", "https://tgui.eu/documentation/0.7/search/all_f.js"},
		{"https://tgui.eu/documentation/0.7", "https://tgui.eu/documentation/0.7/search/all_f.js"},
	}
	for _, tt := range tests {
		got, err := shardURL(tt.base, "all_f.js")
		if err != nil {
			t.Fatalf("shardURL(%q) error = %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("shardURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestNeedsRefresh(t *testing.T) {
	withTestDataDir(t)
	withConfig(t, config.Default())

	if !needsRefresh() {
		t.Error("needsRefresh() = false without a cache manifest")
	}

	store := cache.New(cacheDir())
	hash, err := store.Write([]byte("var searchData=[];"))
	if err != nil {
		t.Fatal(err)
	}
	manifest := &cache.Manifest{
		BaseURL: "https://tgui.eu/documentation/0.7/",
		Updated: time.Now().UTC(),
		Shards:  map[string]string{"all_0.js": hash},
	}
	if err := store.SaveManifest(manifest); err != nil {
		t.Fatal(err)
	}
	if needsRefresh() {
		t.Error("needsRefresh() = true right after a download")
	}

	manifest.Updated = time.Now().Add(-48 * time.Hour)
	if err := store.SaveManifest(manifest); err != nil {
		t.Fatal(err)
	}
	if !needsRefresh() {
		t.Error("needsRefresh() = false for a manifest older than the TTL")
	}
}

func TestRefreshDocumentationIndex(t *testing.T) {
	withTestDataDir(t)
	srv, fixture, requests := newShardServer(t)
	withConfig(t, testRefreshConfig(srv.URL+"/docs/"))

	_, output, err := RefreshDocumentationIndex(t.Context(), nil, RefreshDocumentationIndexInput{})
	if err != nil {
		t.Fatalf("RefreshDocumentationIndex() error = %v", err)
	}
	if !output.Updated {
		t.Fatalf("expected refresh, got %+v", output)
	}
	if output.ShardsLoaded != 1 || output.SymbolsLoaded != 19 || output.SymbolsIndexed != 57 {
		t.Errorf("unexpected counts: %+v", output)
	}
	if output.LastUpdate.IsZero() {
		t.Error("LastUpdate not set")
	}

	manifest, err := cache.New(cacheDir()).LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if got, want := manifest.Shards["all_f.js"], cache.Hash(fixture); got != want {
		t.Errorf("manifest hash = %q, want %q", got, want)
	}
	if _, ok := manifest.Shards["all_e.js"]; ok {
		t.Error("missing shard should not be recorded")
	}

	// Fresh cache: nothing is downloaded again
	before := requests.Load()
	_, output, err = RefreshDocumentationIndex(t.Context(), nil, RefreshDocumentationIndexInput{})
	if err != nil {
		t.Fatalf("second RefreshDocumentationIndex() error = %v", err)
	}
	if output.Updated {
		t.Error("second refresh should report a fresh cache")
	}
	if requests.Load() != before {
		t.Errorf("fresh cache triggered %d request(s)", requests.Load()-before)
	}

	_, lookup, err := LookupSymbol(t.Context(), nil, LookupSymbolInput{Key: "reload"})
	if err != nil {
		t.Fatalf("LookupSymbol() error = %v", err)
	}
	if len(lookup.Matches) != 21 {
		t.Errorf("reload: got %d matches, want 21", len(lookup.Matches))
	}

	// Forced refresh downloads again
	_, output, err = RefreshDocumentationIndex(t.Context(), nil, RefreshDocumentationIndexInput{Force: true})
	if err != nil {
		t.Fatalf("forced RefreshDocumentationIndex() error = %v", err)
	}
	if !output.Updated || requests.Load() == before {
		t.Error("forced refresh did not download")
	}
}

func TestRefreshDocumentationIndex_CachedCatalogOnRestart(t *testing.T) {
	withTestDataDir(t)
	srv, _, _ := newShardServer(t)
	withConfig(t, testRefreshConfig(srv.URL+"/docs/"))

	if _, _, err := RefreshDocumentationIndex(t.Context(), nil, RefreshDocumentationIndexInput{}); err != nil {
		t.Fatalf("RefreshDocumentationIndex() error = %v", err)
	}

	_, source, err := LoadCatalog(t.Context())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if source != SourceCache {
		t.Errorf("source = %q, want %q", source, SourceCache)
	}
}

func TestRefreshDocumentationIndex_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "unavailable", http.StatusInternalServerError)
			},
		},
		{
			name: "not search data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html><body>Moved</body></html>"))
			},
		},
		{
			name:    "nothing published",
			handler: http.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTestDataDir(t)
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			withConfig(t, testRefreshConfig(srv.URL+"/docs/"))

			if _, _, err := RefreshDocumentationIndex(t.Context(), nil, RefreshDocumentationIndexInput{}); err == nil {
				t.Fatal("expected refresh error")
			}
			if _, err := os.Stat(filepath.Join(cacheDir(), "manifest.json")); !os.IsNotExist(err) {
				t.Error("failed refresh must not write a manifest")
			}
		})
	}
}
