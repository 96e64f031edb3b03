package repositories

import (
	"context"
	"time"

	"github.com/streamvault/backend/internal/models"
	"github.com/streamvault/backend/internal/trending"
)

// ProgressRepository defines the data access contract for viewing progress.
// It also serves as the durable aggregation source behind the trending cache.
type ProgressRepository interface {
	Upsert(ctx context.Context, progress models.ViewingProgress) error
	Find(ctx context.Context, userID, episodeID string) (models.ViewingProgress, error)
	TopByViews(ctx context.Context, window time.Duration, n int) ([]trending.Entry, error)
}
