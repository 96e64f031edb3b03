package trending

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const trendingKey = "trending_content"

// RedisStore keeps the ranked trending structure in a Redis sorted set with a
// single TTL covering the whole key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Store backed by the provided Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Top reads up to n members by descending score.
func (s *RedisStore) Top(ctx context.Context, n int) ([]Entry, error) {
	results, err := s.client.ZRevRangeWithScores(ctx, trendingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", trendingKey, err)
	}

	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{ContentID: member, Score: z.Score})
	}
	return entries, nil
}

// Populate writes the entries and refreshes the structure's TTL in a single
// MULTI/EXEC transaction so readers never observe a populated set without an
// expiry.
func (s *RedisStore) Populate(ctx context.Context, entries []Entry, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(entries))
	for _, entry := range entries {
		members = append(members, redis.Z{Member: entry.ContentID, Score: entry.Score})
	}

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, trendingKey, members...)
	pipe.Expire(ctx, trendingKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("populate %s: %w", trendingKey, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
