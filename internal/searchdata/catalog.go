package searchdata

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Catalog merges shards into one read-only lookup structure.
//
// Keys that appear in several shards (Doxygen repeats every symbol in the
// "all" category and in its own category) are merged: occurrences are
// appended in shard order and exact duplicates are dropped. Substring
// queries go through a trigram index backed by roaring bitmaps.
type Catalog struct {
	shards  []ShardID
	entries []Entry
	sources [][]ShardID
	keys    map[string]uint32
	grams   map[string]*roaring.Bitmap // trigram -> entry positions
}

// NewCatalog builds a catalog from shards in the given order
func NewCatalog(shards ...*Shard) *Catalog {
	c := &Catalog{
		keys:  make(map[string]uint32),
		grams: make(map[string]*roaring.Bitmap),
	}
	for _, s := range shards {
		if s == nil {
			continue
		}
		c.shards = append(c.shards, s.ID)
		for _, e := range s.Entries {
			c.merge(s.ID, e)
		}
	}
	for _, bm := range c.grams {
		bm.RunOptimize()
	}
	return c
}

func (c *Catalog) merge(id ShardID, e Entry) {
	if pos, ok := c.keys[e.Key]; ok {
		existing := &c.entries[pos]
		for _, occ := range e.Occurrences {
			if !containsOccurrence(existing.Occurrences, occ) {
				existing.Occurrences = append(existing.Occurrences, occ)
			}
		}
		c.sources[pos] = append(c.sources[pos], id)
		return
	}

	pos := uint32(len(c.entries))
	c.keys[e.Key] = pos
	c.entries = append(c.entries, e.clone())
	c.sources = append(c.sources, []ShardID{id})

	for _, g := range trigrams(e.Key) {
		bm, ok := c.grams[g]
		if !ok {
			bm = roaring.New()
			c.grams[g] = bm
		}
		bm.Add(pos)
	}
}

// Shards returns the IDs of the merged shards in load order
func (c *Catalog) Shards() []ShardID {
	return append([]ShardID(nil), c.shards...)
}

// Len returns the number of distinct keys
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Occurrences returns the total number of occurrences across all keys
func (c *Catalog) Occurrences() int {
	n := 0
	for _, e := range c.entries {
		n += len(e.Occurrences)
	}
	return n
}

// Entries returns a copy of every merged entry in first-seen order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Sources returns the shards a key was found in
func (c *Catalog) Sources(key string) []ShardID {
	pos, ok := c.keys[normalizeKey(key)]
	if !ok {
		return nil
	}
	return append([]ShardID(nil), c.sources[pos]...)
}

// Entry returns the merged entry for key
func (c *Catalog) Entry(key string) (Entry, bool) {
	pos, ok := c.keys[normalizeKey(key)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[pos].clone(), true
}

// Lookup returns every occurrence of key. Unknown keys yield an empty slice.
func (c *Catalog) Lookup(key string) []Match {
	e, ok := c.Entry(key)
	if !ok {
		return []Match{}
	}
	return e.Matches()
}

// Prefix returns entries whose key starts with prefix in first-seen order
func (c *Catalog) Prefix(prefix string, limit int) []Entry {
	prefix = normalizeKey(prefix)
	out := []Entry{}
	for _, e := range c.entries {
		if !strings.HasPrefix(e.Key, prefix) {
			continue
		}
		out = append(out, e.clone())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Contains returns entries whose key contains substr
func (c *Catalog) Contains(substr string, limit int) []Entry {
	substr = normalizeKey(substr)
	candidates := c.candidates(substr)

	out := []Entry{}
	it := candidates.Iterator()
	for it.HasNext() {
		e := c.entries[it.Next()]
		if !strings.Contains(e.Key, substr) {
			continue
		}
		out = append(out, e.clone())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// candidates narrows the key positions that may contain substr
func (c *Catalog) candidates(substr string) *roaring.Bitmap {
	grams := trigrams(substr)
	if len(grams) == 0 {
		all := roaring.New()
		all.AddRange(0, uint64(len(c.entries)))
		return all
	}

	var result *roaring.Bitmap
	for _, g := range grams {
		bm, ok := c.grams[g]
		if !ok {
			return roaring.New()
		}
		if result == nil {
			result = bm.Clone()
			continue
		}
		result.And(bm)
		if result.IsEmpty() {
			break
		}
	}
	return result
}

func trigrams(s string) []string {
	if len(s) < 3 {
		return nil
	}
	seen := make(map[string]bool, len(s)-2)
	out := make([]string, 0, len(s)-2)
	for i := 0; i+3 <= len(s); i++ {
		g := s[i : i+3]
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

func containsOccurrence(list []Occurrence, occ Occurrence) bool {
	for _, o := range list {
		if o == occ {
			return true
		}
	}
	return false
}
