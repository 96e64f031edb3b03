package trending

import (
	"context"
	"fmt"
	"time"
)

// Entry pairs a content identifier with its popularity score.
type Entry struct {
	ContentID string  `json:"id"`
	Score     float64 `json:"score"`
}

// Store holds the ranked trending structure. Implementations must apply the
// TTL to the whole structure on Populate, never on reads.
type Store interface {
	// Top returns up to n entries in descending score order. An empty slice
	// signals a cache miss.
	Top(ctx context.Context, n int) ([]Entry, error)

	// Populate writes the entries and (re)applies the TTL to the structure.
	Populate(ctx context.Context, entries []Entry, ttl time.Duration) error
}

// Source computes the trending ranking from the durable store. It is only
// consulted when the cached structure is empty or has expired.
type Source interface {
	TopByViews(ctx context.Context, window time.Duration, n int) ([]Entry, error)
}

// Cache is a read-through trending cache. While the ranked structure is
// non-empty it fully supersedes the durable store; once it drains, the next
// read repopulates it from the durable aggregation before answering.
// Concurrent misses may each run the aggregation; that duplication is an
// accepted cost at this layer.
type Cache struct {
	store  Store
	source Source
	ttl    time.Duration
	window time.Duration
}

// NewCache constructs a Cache with the provided TTL for the ranked structure
// and aggregation window for repopulation.
func NewCache(store Store, source Source, ttl, window time.Duration) *Cache {
	if store == nil || source == nil {
		panic("trending: store and source must not be nil")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Cache{store: store, source: source, ttl: ttl, window: window}
}

// Top returns the top-n trending entries, repopulating from the durable store
// on a cache miss.
func (c *Cache) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}

	entries, err := c.store.Top(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("read trending cache: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	fresh, err := c.source.TopByViews(ctx, c.window, n)
	if err != nil {
		return nil, fmt.Errorf("aggregate trending: %w", err)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	if err := c.store.Populate(ctx, fresh, c.ttl); err != nil {
		return nil, fmt.Errorf("populate trending cache: %w", err)
	}

	return fresh, nil
}
