package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamvault/backend/internal/models"
)

// ErrProgressMiss indicates no cached snapshot exists for the key.
var ErrProgressMiss = errors.New("progress cache miss")

// ProgressCache keeps a short-lived JSON snapshot of the most recent viewing
// progress per (user, episode) pair. The TTL is refreshed on every write,
// never on read; the durable store remains the source of truth.
type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressCache constructs a ProgressCache with the provided snapshot TTL.
func NewProgressCache(client *redis.Client, ttl time.Duration) *ProgressCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ProgressCache{client: client, ttl: ttl}
}

func progressKey(userID, episodeID string) string {
	return fmt.Sprintf("viewing_progress:%s:%s", userID, episodeID)
}

// Set stores the progress snapshot, refreshing its TTL.
func (c *ProgressCache) Set(ctx context.Context, progress models.ViewingProgress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress snapshot: %w", err)
	}

	key := progressKey(progress.UserID, progress.EpisodeID)
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache progress snapshot: %w", err)
	}
	return nil
}

// Get returns the cached snapshot or ErrProgressMiss when absent or expired.
func (c *ProgressCache) Get(ctx context.Context, userID, episodeID string) (models.ViewingProgress, error) {
	payload, err := c.client.Get(ctx, progressKey(userID, episodeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ViewingProgress{}, ErrProgressMiss
	}
	if err != nil {
		return models.ViewingProgress{}, fmt.Errorf("read progress snapshot: %w", err)
	}

	var progress models.ViewingProgress
	if err := json.Unmarshal(payload, &progress); err != nil {
		return models.ViewingProgress{}, fmt.Errorf("unmarshal progress snapshot: %w", err)
	}
	return progress, nil
}
