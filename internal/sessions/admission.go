package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Controller enforces the per-user concurrent viewing-session limit. Session
// state lives entirely in the backing store; an untouched set simply ages out
// after the TTL, which is how sessions abandoned by a crash are reclaimed.
type Controller struct {
	store Store
	limit int
	ttl   time.Duration

	// NowFunc overrides the clock, primarily for tests.
	NowFunc func() time.Time
}

// NewController constructs a Controller admitting up to limit concurrent
// sessions per user, each set carrying the provided TTL.
func NewController(store Store, limit int, ttl time.Duration) *Controller {
	if store == nil {
		panic("sessions: store must not be nil")
	}
	if limit <= 0 {
		limit = 2
	}
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &Controller{store: store, limit: limit, ttl: ttl}
}

// Start admits a new viewing session for the user and returns its identifier.
// When the user already holds the maximum number of sessions it fails with
// ErrTooManySessions and mutates nothing.
func (c *Controller) Start(ctx context.Context, userID, episodeID string) (string, error) {
	if userID == "" || episodeID == "" {
		return "", errors.New("sessions: user id and episode id must be provided")
	}

	sessionID := fmt.Sprintf("%s:%s:%d", userID, episodeID, c.now().UnixNano())
	if err := c.store.Add(ctx, userID, sessionID, c.limit, c.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// End removes the session from the user's active set. Ending a session that
// no longer exists is not an error.
func (c *Controller) End(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return nil
	}
	return c.store.Remove(ctx, userID, sessionID)
}

// Active returns the user's current number of live sessions.
func (c *Controller) Active(ctx context.Context, userID string) (int64, error) {
	return c.store.Count(ctx, userID)
}

func (c *Controller) now() time.Time {
	if c.NowFunc != nil {
		return c.NowFunc()
	}
	return time.Now().UTC()
}
