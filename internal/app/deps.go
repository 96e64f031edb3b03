package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/streamvault/backend/internal/analytics"
	"github.com/streamvault/backend/internal/auth"
	"github.com/streamvault/backend/internal/cache"
	"github.com/streamvault/backend/internal/config"
	"github.com/streamvault/backend/internal/db"
	"github.com/streamvault/backend/internal/handlers"
	"github.com/streamvault/backend/internal/middleware"
	"github.com/streamvault/backend/internal/repositories"
	"github.com/streamvault/backend/internal/sessions"
	"github.com/streamvault/backend/internal/trending"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, redisClient *redis.Client, mongoClient *mongo.Client, cfg config.Config) handlers.Dependencies {
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)
	progressRepo := repositories.NewPostgresProgressRepository(pool)

	return handlers.Dependencies{
		Users:         repositories.NewPostgresUserRepository(pool),
		Tokens:        tokens,
		Verifier:      tokens,
		Passwords:     auth.NewPasswordHasher(cfg.BcryptCost),
		Catalog:       repositories.NewPostgresCatalogRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Progress:      progressRepo,
		ProgressCache: cache.NewProgressCache(redisClient, cfg.ProgressCacheTTL),
		Sessions:      sessions.NewController(sessions.NewRedisStore(redisClient), cfg.SessionLimit, cfg.SessionTTL),
		Trending:      trending.NewCache(trending.NewRedisStore(redisClient), progressRepo, cfg.TrendingTTL, cfg.TrendingWindow),
		Analytics:     analytics.NewMongoSink(mongoClient, cfg.MongoDatabase),
		AuthLimiter:   middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}
}
