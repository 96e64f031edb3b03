package sessions

import (
	"context"
	"sync"
	"time"
)

type memorySet struct {
	members   map[string]struct{}
	expiresAt time.Time
}

// MemoryStore implements Store with an in-memory map for tests and local
// development. TTL semantics mirror Redis: the whole set expires at once, and
// the deadline is refreshed on every mutation.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string]*memorySet
	now  func() time.Time
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sets: make(map[string]*memorySet),
		now:  time.Now,
	}
}

// WithNowFunc overrides the time source. Useful for simulating TTL expiry.
func (s *MemoryStore) WithNowFunc(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Add admits sessionID when the live set holds fewer than limit members.
func (s *MemoryStore) Add(_ context.Context, userID, sessionID string, limit int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	set := s.liveSetLocked(userID, now)
	if set == nil {
		set = &memorySet{members: make(map[string]struct{})}
		s.sets[userID] = set
	}

	if len(set.members) >= limit {
		return ErrTooManySessions
	}

	set.members[sessionID] = struct{}{}
	set.expiresAt = now.Add(ttl)
	return nil
}

// Remove deletes sessionID from the user's set; absent members are ignored.
func (s *MemoryStore) Remove(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.liveSetLocked(userID, s.now())
	if set == nil {
		return nil
	}
	delete(set.members, sessionID)
	return nil
}

// Count returns the number of live members in the user's set.
func (s *MemoryStore) Count(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.liveSetLocked(userID, s.now())
	if set == nil {
		return 0, nil
	}
	return int64(len(set.members)), nil
}

// liveSetLocked returns the user's set, dropping it first when expired.
func (s *MemoryStore) liveSetLocked(userID string, now time.Time) *memorySet {
	set, ok := s.sets[userID]
	if !ok {
		return nil
	}
	if now.After(set.expiresAt) {
		delete(s.sets, userID)
		return nil
	}
	return set
}

var _ Store = (*MemoryStore)(nil)
