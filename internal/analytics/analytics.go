// Package analytics appends behavioral and operational events to the document
// store. Writes are fire-and-forget from the caller's perspective: handlers
// log failures but never surface them to clients.
package analytics

import (
	"context"
	"time"
)

// Viewing log actions.
const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionStop  = "stop"
	ActionSeek  = "seek"
)

// ViewingLog records a playback event for an episode.
type ViewingLog struct {
	UserID    string         `bson:"user_id" json:"userId"`
	EpisodeID string         `bson:"episode_id" json:"episodeId"`
	Progress  int            `bson:"progress" json:"progress"`
	Action    string         `bson:"action" json:"action"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Device    map[string]any `bson:"device_info,omitempty" json:"deviceInfo,omitempty"`
}

// UserBehavior records a non-playback interaction (search, browse, rate, ...).
type UserBehavior struct {
	UserID     string         `bson:"user_id" json:"userId"`
	ActionType string         `bson:"action_type" json:"actionType"`
	Timestamp  time.Time      `bson:"timestamp" json:"timestamp"`
	Details    map[string]any `bson:"details,omitempty" json:"details,omitempty"`
}

// PerformanceMetric records an operational measurement.
type PerformanceMetric struct {
	MetricType string         `bson:"metric_type" json:"metricType"`
	Value      float64        `bson:"value" json:"value"`
	Timestamp  time.Time      `bson:"timestamp" json:"timestamp"`
	Details    map[string]any `bson:"details,omitempty" json:"details,omitempty"`
}

// ErrorLog records a server-side failure for later inspection.
type ErrorLog struct {
	ErrorType  string    `bson:"error_type" json:"errorType"`
	Severity   string    `bson:"severity" json:"severity"`
	Message    string    `bson:"message" json:"message"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	StackTrace string    `bson:"stack_trace,omitempty" json:"stackTrace,omitempty"`
}

// Sink is the append-only contract handlers depend on, plus the recent-views
// read that backs the per-user analytics endpoint.
type Sink interface {
	RecordView(ctx context.Context, log ViewingLog) error
	RecordBehavior(ctx context.Context, behavior UserBehavior) error
	RecordMetric(ctx context.Context, metric PerformanceMetric) error
	RecordError(ctx context.Context, log ErrorLog) error
	RecentViews(ctx context.Context, userID string, limit int) ([]ViewingLog, error)
}
