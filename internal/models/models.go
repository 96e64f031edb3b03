package models

import "time"

// User represents a registered account on the streaming platform.
// The password hash is never serialized into API responses.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Series is a top-level catalog entry.
type Series struct {
	ID          string
	Title       string
	Description string
	ReleaseYear int
	Genre       string
	Rating      string
	CreatedAt   time.Time
}

// Episode belongs to a series.
type Episode struct {
	ID            string
	SeriesID      string
	SeasonNumber  int
	EpisodeNumber int
	Title         string
	Duration      int
	Description   string
	CreatedAt     time.Time
}

// Subscription plan types accepted at creation time.
const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// Subscription records a user's access plan. A subscription is active while
// EndDate is in the future.
type Subscription struct {
	ID          string
	UserID      string
	PlanType    string
	StartDate   time.Time
	EndDate     time.Time
	AutoRenewal bool
	Status      string
}

// ViewingProgress tracks how far a user has watched an episode.
type ViewingProgress struct {
	UserID    string
	EpisodeID string
	Progress  int
	UpdatedAt time.Time
}
