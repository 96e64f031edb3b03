package analytics

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionViewingLogs        = "viewing_logs"
	collectionUserBehaviors      = "user_behaviors"
	collectionPerformanceMetrics = "performance_metrics"
	collectionErrorLogs          = "error_logs"
)

// Connect initialises a MongoDB client and verifies connectivity with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client, nil
}

// MongoSink appends analytics documents to MongoDB collections.
type MongoSink struct {
	db *mongo.Database
}

// NewMongoSink constructs a Sink writing into the provided database.
func NewMongoSink(client *mongo.Client, database string) *MongoSink {
	return &MongoSink{db: client.Database(database)}
}

// RecordView appends a playback event to viewing_logs.
func (s *MongoSink) RecordView(ctx context.Context, log ViewingLog) error {
	if _, err := s.db.Collection(collectionViewingLogs).InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert viewing log: %w", err)
	}
	return nil
}

// RecordBehavior appends an interaction event to user_behaviors.
func (s *MongoSink) RecordBehavior(ctx context.Context, behavior UserBehavior) error {
	if _, err := s.db.Collection(collectionUserBehaviors).InsertOne(ctx, behavior); err != nil {
		return fmt.Errorf("insert user behavior: %w", err)
	}
	return nil
}

// RecordMetric appends a measurement to performance_metrics.
func (s *MongoSink) RecordMetric(ctx context.Context, metric PerformanceMetric) error {
	if _, err := s.db.Collection(collectionPerformanceMetrics).InsertOne(ctx, metric); err != nil {
		return fmt.Errorf("insert performance metric: %w", err)
	}
	return nil
}

// RecordError appends a failure record to error_logs.
func (s *MongoSink) RecordError(ctx context.Context, log ErrorLog) error {
	if _, err := s.db.Collection(collectionErrorLogs).InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert error log: %w", err)
	}
	return nil
}

// RecentViews returns the user's most recent viewing logs, newest first.
func (s *MongoSink) RecentViews(ctx context.Context, userID string, limit int) ([]ViewingLog, error) {
	if limit <= 0 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.db.Collection(collectionViewingLogs).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query viewing logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []ViewingLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decode viewing logs: %w", err)
	}
	return logs, nil
}

var _ Sink = (*MongoSink)(nil)
