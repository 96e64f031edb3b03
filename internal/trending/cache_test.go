package trending

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"
)

type countingSource struct {
	mu      sync.Mutex
	calls   int
	entries []Entry
}

func (s *countingSource) TopByViews(context.Context, time.Duration, int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.entries, nil
}

func (s *countingSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCacheColdMissPopulatesOnce(t *testing.T) {
	store := NewMemoryStore()
	source := &countingSource{entries: []Entry{
		{ContentID: "series-1", Score: 42},
		{ContentID: "series-2", Score: 17},
		{ContentID: "series-3", Score: 5},
	}}
	cache := NewCache(store, source, time.Hour, 24*time.Hour)
	ctx := context.Background()

	first, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("cold read: %v", err)
	}
	if source.callCount() != 1 {
		t.Fatalf("expected exactly one aggregation on cold read, got %d", source.callCount())
	}
	if len(first) != 3 || first[0].ContentID != "series-1" {
		t.Fatalf("unexpected cold ranking: %+v", first)
	}

	second, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("warm read: %v", err)
	}
	if source.callCount() != 1 {
		t.Fatalf("warm read must not touch the durable store, got %d calls", source.callCount())
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("warm read ordering changed: %+v vs %+v", first, second)
	}
}

func TestCacheRepopulatesAfterExpiry(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	store.WithNowFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})

	source := &countingSource{entries: []Entry{{ContentID: "series-1", Score: 3}}}
	cache := NewCache(store, source, time.Hour, 24*time.Hour)
	ctx := context.Background()

	if _, err := cache.Top(ctx, 10); err != nil {
		t.Fatalf("cold read: %v", err)
	}

	mu.Lock()
	current = current.Add(time.Hour + time.Minute)
	mu.Unlock()

	if _, err := cache.Top(ctx, 10); err != nil {
		t.Fatalf("read after expiry: %v", err)
	}
	if source.callCount() != 2 {
		t.Fatalf("expected repopulation after TTL expiry, got %d calls", source.callCount())
	}
}

func TestCacheEmptyAggregationStaysCold(t *testing.T) {
	store := NewMemoryStore()
	source := &countingSource{}
	cache := NewCache(store, source, time.Hour, 24*time.Hour)
	ctx := context.Background()

	entries, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty ranking, got %+v", entries)
	}

	// Nothing to cache, so the next read consults the durable store again.
	if _, err := cache.Top(ctx, 10); err != nil {
		t.Fatalf("read: %v", err)
	}
	if source.callCount() != 2 {
		t.Fatalf("expected second aggregation, got %d calls", source.callCount())
	}
}

func TestMemoryStoreOrdersDescendingWithDeterministicTies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Populate(ctx, []Entry{
		{ContentID: "a", Score: 2},
		{ContentID: "b", Score: 2},
		{ContentID: "c", Score: 9},
	}, time.Hour)
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	entries, err := store.Top(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []Entry{{ContentID: "c", Score: 9}, {ContentID: "b", Score: 2}}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("expected %+v, got %+v", want, entries)
	}
}
