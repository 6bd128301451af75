package symbolindex

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/ktnyt/fae-sub001/internal/message"
)

// fileEntry holds every symbol currently indexed for one file. Store keys
// its by-filepath map on an xxhash digest of the path rather than the raw
// string (teacher go.mod dependency, used the same way the teacher uses it
// for cache/index keys) and keeps the path alongside the bucket to resolve
// the rare collision.
type fileEntry struct {
	path    string
	records []message.SymbolRecord
}

// Store is fae's symbol-index store (spec.md §3): a by-filepath view for
// invalidation and a flat view for fuzzy search, guarded by a single lock
// held only for the duration of one mutation or one snapshot copy (spec.md
// §5, DESIGN NOTES §9: "no cross-actor locks").
type Store struct {
	mu     sync.RWMutex
	byFile map[uint64]*fileEntry
}

// NewStore creates an empty symbol store.
func NewStore() *Store {
	return &Store{byFile: make(map[uint64]*fileEntry)}
}

func fileKey(path string) uint64 {
	return xxhash.Sum64String(path)
}

// Clear removes every record keyed by path. Safe to call for a path with no
// records.
func (s *Store) Clear(path string) {
	key := fileKey(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.byFile[key]; ok && entry.path == path {
		delete(s.byFile, key)
	}
}

// Push appends one record to its file's bucket.
func (s *Store) Push(r message.SymbolRecord) {
	key := fileKey(r.Filepath)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byFile[key]
	if !ok || entry.path != r.Filepath {
		entry = &fileEntry{path: r.Filepath}
		s.byFile[key] = entry
	}
	entry.records = append(entry.records, r)
}

// Records returns the current records for path, for tests and invariant
// checks.
func (s *Store) Records(path string) []message.SymbolRecord {
	key := fileKey(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.byFile[key]
	if !ok || entry.path != path {
		return nil
	}
	out := make([]message.SymbolRecord, len(entry.records))
	copy(out, entry.records)
	return out
}

// snapshot copies every record out from under the lock, so scoring runs
// lock-free (spec.md §5's "hold the lock only to copy references... score
// outside it").
func (s *Store) snapshot() []message.SymbolRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []message.SymbolRecord
	for _, entry := range s.byFile {
		out = append(out, entry.records...)
	}
	return out
}

// FuzzyQuery scores every indexed symbol against pattern, keeping matches
// for which filter (if non-nil) returns true, and returns up to limit
// results sorted per spec.md §4.3: score descending, then shorter name
// first, then filepath lexicographically, then line ascending.
func (s *Store) FuzzyQuery(pattern string, limit int, filter func(message.SymbolType) bool) []message.SearchResult {
	records := s.snapshot()

	type scored struct {
		rec   message.SymbolRecord
		score float64
	}
	matches := make([]scored, 0, len(records))
	for _, r := range records {
		if filter != nil && !filter(r.SymbolType) {
			continue
		}
		score, ok := scoreSymbolName(pattern, r.Name)
		if !ok {
			continue
		}
		matches = append(matches, scored{rec: r, score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if len(a.rec.Name) != len(b.rec.Name) {
			return len(a.rec.Name) < len(b.rec.Name)
		}
		if a.rec.Filepath != b.rec.Filepath {
			return a.rec.Filepath < b.rec.Filepath
		}
		return a.rec.Line < b.rec.Line
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]message.SearchResult, len(matches))
	for i, m := range matches {
		score := m.score
		results[i] = message.SearchResult{
			Filename: m.rec.Filepath,
			Line:     m.rec.Line,
			Offset:   m.rec.Column,
			Content:  m.rec.Content,
			Score:    &score,
		}
	}
	return results
}
