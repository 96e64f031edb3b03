package trending

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-memory map for tests and local
// development. Like the Redis structure, the whole ranking expires at once.
type MemoryStore struct {
	mu        sync.Mutex
	scores    map[string]float64
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryStore returns an empty in-memory trending store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores: make(map[string]float64),
		now:    time.Now,
	}
}

// WithNowFunc overrides the time source. Useful for simulating TTL expiry.
func (s *MemoryStore) WithNowFunc(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Top returns up to n entries by descending score, ties broken by member so
// the ordering is deterministic.
func (s *MemoryStore) Top(_ context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().After(s.expiresAt) {
		s.scores = make(map[string]float64)
		return nil, nil
	}

	entries := make([]Entry, 0, len(s.scores))
	for id, score := range s.scores {
		entries = append(entries, Entry{ContentID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ContentID > entries[j].ContentID
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Populate writes the entries and refreshes the structure's expiry.
func (s *MemoryStore) Populate(_ context.Context, entries []Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.After(s.expiresAt) {
		s.scores = make(map[string]float64)
	}
	for _, entry := range entries {
		s.scores[entry.ContentID] = entry.Score
	}
	s.expiresAt = now.Add(ttl)
	return nil
}

var _ Store = (*MemoryStore)(nil)
