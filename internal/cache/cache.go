// Package cache keeps downloaded search data files in a zstd compressed,
// content-addressed store so refreshes can skip unchanged shards.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

const manifestName = "manifest.json"

// ErrBadHash is returned for hashes too short to address a file
var ErrBadHash = errors.New("invalid content hash")

// Store is a content-addressed directory of compressed shard files
type Store struct {
	dir string
}

// Manifest maps shard file names to the hash of their last downloaded content
type Manifest struct {
	BaseURL string            `json:"base_url"`
	Updated time.Time         `json:"updated"`
	Shards  map[string]string `json:"shards"`
}

// Stale reports whether the manifest is older than ttl. A zero ttl never expires.
func (m *Manifest) Stale(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(m.Updated) > ttl
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory
func (s *Store) Dir() string {
	return s.dir
}

// path returns the sharded file path for a hash: <dir>/<first2>/<rest>.js.zst
func (s *Store) path(hash string) (string, error) {
	if len(hash) < 3 {
		return "", fmt.Errorf("%w: %q", ErrBadHash, hash)
	}
	return filepath.Join(s.dir, hash[:2], hash[2:]+".js.zst"), nil
}

// Hash returns the hex SHA-256 of data, the key Write stores it under
func Hash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// Write stores data, returning its SHA-256 hash.
// If the content already exists, this is a no-op.
func (s *Store) Write(data []byte) (string, error) {
	hash := Hash(data)

	p, err := s.path(hash)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("compressing cache content: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing zstd writer: %w", err)
	}

	// Write to a temp file first so readers never see a partial entry
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming cache file: %w", err)
	}

	return hash, nil
}

// Has reports whether content with the given hash is stored
func (s *Store) Has(hash string) bool {
	p, err := s.path(hash)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Read retrieves content by hash
func (s *Store) Read(hash string) ([]byte, error) {
	p, err := s.path(hash)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("reading cache file %s: %w", hash, err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing cache file %s: %w", hash, err)
	}
	return data, nil
}

// SaveManifest writes m as <dir>/manifest.json
func (s *Store) SaveManifest(m *Manifest) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	p := filepath.Join(s.dir, manifestName)
	if err := os.WriteFile(p+".tmp", data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(p+".tmp", p); err != nil {
		return fmt.Errorf("renaming manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the manifest. A missing manifest yields an empty one.
func (s *Store) LoadManifest() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestName))
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{Shards: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if m.Shards == nil {
		m.Shards = map[string]string{}
	}
	return &m, nil
}

// Files returns the cached content of every shard in the manifest keyed by
// file name. Shards whose content is missing from the store are skipped.
func (s *Store) Files(m *Manifest) (map[string][]byte, error) {
	files := make(map[string][]byte, len(m.Shards))
	for name, hash := range m.Shards {
		if !s.Has(hash) {
			continue
		}
		data, err := s.Read(hash)
		if err != nil {
			return nil, err
		}
		files[name] = data
	}
	return files, nil
}
