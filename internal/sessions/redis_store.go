package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "viewing_session:"

// admitScript performs the cardinality check, the insert, and the TTL refresh
// as one atomic unit on the Redis server. Returns 1 when admitted, 0 when the
// set is already at the limit.
var admitScript = redis.NewScript(`
if redis.call('SCARD', KEYS[1]) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('SADD', KEYS[1], ARGV[1])
redis.call('EXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisStore keeps active viewing sessions in Redis sets keyed per user,
// relying on Redis's native TTL for implicit session expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Store backed by the provided Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(userID string) string {
	return keyPrefix + userID
}

// Add atomically admits sessionID into the user's set when below limit.
func (s *RedisStore) Add(ctx context.Context, userID, sessionID string, limit int, ttl time.Duration) error {
	admitted, err := admitScript.Run(ctx, s.client,
		[]string{sessionKey(userID)},
		sessionID, limit, int(ttl.Seconds()),
	).Int()
	if err != nil {
		return fmt.Errorf("admit viewing session: %w", err)
	}
	if admitted == 0 {
		return ErrTooManySessions
	}
	return nil
}

// Remove deletes sessionID from the user's set.
func (s *RedisStore) Remove(ctx context.Context, userID, sessionID string) error {
	if err := s.client.SRem(ctx, sessionKey(userID), sessionID).Err(); err != nil {
		return fmt.Errorf("remove viewing session: %w", err)
	}
	return nil
}

// Count returns the user's current number of active sessions.
func (s *RedisStore) Count(ctx context.Context, userID string) (int64, error) {
	count, err := s.client.SCard(ctx, sessionKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count viewing sessions: %w", err)
	}
	return count, nil
}

var _ Store = (*RedisStore)(nil)
