package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/streamvault/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		SecretKey:        "test-secret",
		TokenTTL:         30 * time.Minute,
		BcryptCost:       4,
		SessionLimit:     2,
		SessionTTL:       4 * time.Hour,
		TrendingTTL:      time.Hour,
		TrendingWindow:   24 * time.Hour,
		ProgressCacheTTL: time.Hour,
		MongoDatabase:    "streaming_analytics",
	}

	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer func() { _ = redisClient.Close() }()

	// The driver dials lazily, so constructing a client performs no I/O.
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("construct mongo client: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	deps := buildDependencies(fakePool{}, redisClient, mongoClient, cfg)

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Tokens == nil || deps.Verifier == nil {
		t.Fatal("expected token manager to be configured")
	}
	if deps.Passwords == nil {
		t.Fatal("expected password hasher to be configured")
	}
	if deps.Catalog == nil {
		t.Fatal("expected catalog repository to be configured")
	}
	if deps.Subscriptions == nil {
		t.Fatal("expected subscription repository to be configured")
	}
	if deps.Progress == nil {
		t.Fatal("expected progress repository to be configured")
	}
	if deps.ProgressCache == nil {
		t.Fatal("expected progress cache to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session controller to be configured")
	}
	if deps.Trending == nil {
		t.Fatal("expected trending cache to be configured")
	}
	if deps.Analytics == nil {
		t.Fatal("expected analytics sink to be configured")
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected auth rate limiter to be configured")
	}
}
