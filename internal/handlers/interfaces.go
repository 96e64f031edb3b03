package handlers

import (
	"context"

	"github.com/streamvault/backend/internal/analytics"
	"github.com/streamvault/backend/internal/models"
	"github.com/streamvault/backend/internal/trending"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// TokenIssuer produces signed session tokens for authenticated users.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// CredentialHasher hashes and verifies passwords.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// CatalogStore captures persistence for series and episodes.
type CatalogStore interface {
	CreateSeries(ctx context.Context, series models.Series) error
	ListSeries(ctx context.Context, skip, limit int) ([]models.Series, error)
	FindSeries(ctx context.Context, seriesID string) (models.Series, error)
	ListEpisodes(ctx context.Context, seriesID string) ([]models.Episode, error)
	FindEpisode(ctx context.Context, episodeID string) (models.Episode, error)
}

// SubscriptionStore captures persistence for subscriptions.
type SubscriptionStore interface {
	CreateActive(ctx context.Context, subscription models.Subscription) error
	FindActive(ctx context.Context, userID string) (models.Subscription, error)
	HasActive(ctx context.Context, userID string) (bool, error)
	CancelActive(ctx context.Context, userID string) error
}

// ProgressStore captures persistence for viewing progress.
type ProgressStore interface {
	Upsert(ctx context.Context, progress models.ViewingProgress) error
	Find(ctx context.Context, userID, episodeID string) (models.ViewingProgress, error)
}

// ProgressCacher caches the most recent progress snapshot per (user, episode).
// Get fails with cache.ErrProgressMiss when no snapshot exists.
type ProgressCacher interface {
	Set(ctx context.Context, progress models.ViewingProgress) error
	Get(ctx context.Context, userID, episodeID string) (models.ViewingProgress, error)
}

// SessionAdmitter controls concurrent viewing sessions per user.
type SessionAdmitter interface {
	Start(ctx context.Context, userID, episodeID string) (string, error)
	End(ctx context.Context, userID, sessionID string) error
}

// TrendingProvider serves the ranked trending content listing.
type TrendingProvider interface {
	Top(ctx context.Context, n int) ([]trending.Entry, error)
}

// AnalyticsSink appends playback and telemetry events and serves the
// recent-views read. Playback writes are fire-and-forget: handlers log
// failures without surfacing them.
type AnalyticsSink interface {
	RecordView(ctx context.Context, log analytics.ViewingLog) error
	RecordBehavior(ctx context.Context, behavior analytics.UserBehavior) error
	RecordMetric(ctx context.Context, metric analytics.PerformanceMetric) error
	RecordError(ctx context.Context, log analytics.ErrorLog) error
	RecentViews(ctx context.Context, userID string, limit int) ([]analytics.ViewingLog, error)
}
