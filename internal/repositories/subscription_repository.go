package repositories

import (
	"context"

	"github.com/streamvault/backend/internal/models"
)

// SubscriptionRepository defines the data access contract for subscriptions.
// CreateActive must be transactional: under concurrent requests for the same
// user exactly one active subscription may come into existence.
type SubscriptionRepository interface {
	CreateActive(ctx context.Context, subscription models.Subscription) error
	FindActive(ctx context.Context, userID string) (models.Subscription, error)
	HasActive(ctx context.Context, userID string) (bool, error)
	CancelActive(ctx context.Context, userID string) error
}
