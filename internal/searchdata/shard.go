package searchdata

import (
	"sort"
	"strings"
)

// Doxygen writes one file per category and first-character bucket
var knownCategories = map[string]bool{
	"all": true, "classes": true, "namespaces": true, "files": true,
	"functions": true, "variables": true, "typedefs": true, "enums": true,
	"enumvalues": true, "related": true, "defines": true, "groups": true,
	"pages": true,
}

// ShardID identifies a data file by category and bucket ("all_f.js")
type ShardID struct {
	Category string `json:"category"`
	Bucket   string `json:"bucket"`
}

// ParseShardID derives the ID from a file name such as "functions_1a.js".
// Unknown names keep the whole base name as the category.
func ParseShardID(filename string) ShardID {
	base := strings.TrimSuffix(filename, ".js")
	i := strings.LastIndexByte(base, '_')
	if i <= 0 || !knownCategories[base[:i]] {
		return ShardID{Category: base}
	}
	return ShardID{Category: base[:i], Bucket: base[i+1:]}
}

// String returns the file stem, e.g. "all_f"
func (id ShardID) String() string {
	if id.Bucket == "" {
		return id.Category
	}
	return id.Category + "_" + id.Bucket
}

// Shard is one parsed search data file. It is not modified after parsing
// and is safe for concurrent readers.
type Shard struct {
	ID       ShardID
	Variable string
	Entries  []Entry

	keys map[string]int // first index per key
}

// NewShard builds a shard from entries in the given order
func NewShard(id ShardID, entries []Entry) *Shard {
	s := &Shard{
		ID:       id,
		Variable: DefaultVariable,
		Entries:  make([]Entry, 0, len(entries)),
		keys:     make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		s.add(e.clone())
	}
	return s
}

func (s *Shard) add(e Entry) {
	if _, seen := s.keys[e.Key]; !seen {
		s.keys[e.Key] = len(s.Entries)
	}
	s.Entries = append(s.Entries, e)
}

// Len returns the number of entries
func (s *Shard) Len() int {
	return len(s.Entries)
}

// Entry returns the entry for key. The key is matched case-insensitively.
func (s *Shard) Entry(key string) (Entry, bool) {
	i, ok := s.keys[normalizeKey(key)]
	if !ok {
		return Entry{}, false
	}
	return s.Entries[i].clone(), true
}

// Lookup returns every occurrence for key. Unknown keys yield an empty slice.
func (s *Shard) Lookup(key string) []Match {
	e, ok := s.Entry(key)
	if !ok {
		return []Match{}
	}
	return e.Matches()
}

// Prefix returns entries whose key starts with prefix, in shard order.
// A limit <= 0 means no limit.
func (s *Shard) Prefix(prefix string, limit int) []Entry {
	prefix = normalizeKey(prefix)
	return s.filter(limit, func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// Contains returns entries whose key contains substr, in shard order
func (s *Shard) Contains(substr string, limit int) []Entry {
	substr = normalizeKey(substr)
	return s.filter(limit, func(key string) bool {
		return strings.Contains(key, substr)
	})
}

// Keys returns the distinct keys sorted lexically
func (s *Shard) Keys() []string {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Shard) filter(limit int, match func(string) bool) []Entry {
	out := []Entry{}
	for _, e := range s.Entries {
		if !match(e.Key) {
			continue
		}
		out = append(out, e.clone())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// normalizeKey lowercases a query the way the generator lowercases keys
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
