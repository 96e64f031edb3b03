package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrTooManySessions indicates the user already holds the maximum number of
// concurrent viewing sessions. The rejected call leaves no state behind.
var ErrTooManySessions = errors.New("maximum concurrent viewing sessions reached")

// Store persists per-user sets of active viewing-session identifiers.
// Implementations must be safe for concurrent use, and Add must perform the
// cardinality check and the insert as a single atomic operation so that two
// racing callers can never push a set past the limit.
type Store interface {
	// Add inserts sessionID into the user's set when its current cardinality
	// is below limit, refreshing the set's TTL. It returns ErrTooManySessions
	// without mutating anything when the set is already full.
	Add(ctx context.Context, userID, sessionID string, limit int, ttl time.Duration) error

	// Remove deletes sessionID from the user's set. Removing an absent
	// identifier is not an error.
	Remove(ctx context.Context, userID, sessionID string) error

	// Count returns the number of live session identifiers for the user.
	Count(ctx context.Context, userID string) (int64, error)
}
