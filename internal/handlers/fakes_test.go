package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/streamvault/backend/internal/analytics"
	"github.com/streamvault/backend/internal/cache"
	"github.com/streamvault/backend/internal/models"
	"github.com/streamvault/backend/internal/repositories"
	"github.com/streamvault/backend/internal/trending"
)

type inMemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.Username] = user
	return nil
}

func (s *inMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

type inMemoryCatalogStore struct {
	series   map[string]models.Series
	episodes map[string]models.Episode
}

func newInMemoryCatalogStore() *inMemoryCatalogStore {
	return &inMemoryCatalogStore{
		series:   make(map[string]models.Series),
		episodes: make(map[string]models.Episode),
	}
}

func (s *inMemoryCatalogStore) CreateSeries(_ context.Context, series models.Series) error {
	s.series[series.ID] = series
	return nil
}

func (s *inMemoryCatalogStore) ListSeries(_ context.Context, skip, limit int) ([]models.Series, error) {
	all := make([]models.Series, 0, len(s.series))
	for _, series := range s.series {
		all = append(all, series)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *inMemoryCatalogStore) FindSeries(_ context.Context, seriesID string) (models.Series, error) {
	series, ok := s.series[seriesID]
	if !ok {
		return models.Series{}, repositories.ErrNotFound
	}
	return series, nil
}

func (s *inMemoryCatalogStore) ListEpisodes(_ context.Context, seriesID string) ([]models.Episode, error) {
	var episodes []models.Episode
	for _, episode := range s.episodes {
		if episode.SeriesID == seriesID {
			episodes = append(episodes, episode)
		}
	}
	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].EpisodeNumber < episodes[j].EpisodeNumber
	})
	return episodes, nil
}

func (s *inMemoryCatalogStore) FindEpisode(_ context.Context, episodeID string) (models.Episode, error) {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return models.Episode{}, repositories.ErrNotFound
	}
	return episode, nil
}

type inMemorySubscriptionStore struct {
	active map[string]models.Subscription
}

func newInMemorySubscriptionStore() *inMemorySubscriptionStore {
	return &inMemorySubscriptionStore{active: make(map[string]models.Subscription)}
}

func (s *inMemorySubscriptionStore) CreateActive(_ context.Context, subscription models.Subscription) error {
	if _, exists := s.active[subscription.UserID]; exists {
		return repositories.ErrConflict
	}
	s.active[subscription.UserID] = subscription
	return nil
}

func (s *inMemorySubscriptionStore) FindActive(_ context.Context, userID string) (models.Subscription, error) {
	subscription, ok := s.active[userID]
	if !ok {
		return models.Subscription{}, repositories.ErrNotFound
	}
	return subscription, nil
}

func (s *inMemorySubscriptionStore) HasActive(_ context.Context, userID string) (bool, error) {
	_, ok := s.active[userID]
	return ok, nil
}

func (s *inMemorySubscriptionStore) CancelActive(_ context.Context, userID string) error {
	subscription, ok := s.active[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	subscription.AutoRenewal = false
	subscription.Status = models.SubscriptionCancelled
	s.active[userID] = subscription
	return nil
}

type inMemoryProgressStore struct {
	entries map[string]models.ViewingProgress
}

func newInMemoryProgressStore() *inMemoryProgressStore {
	return &inMemoryProgressStore{entries: make(map[string]models.ViewingProgress)}
}

func (s *inMemoryProgressStore) Upsert(_ context.Context, progress models.ViewingProgress) error {
	s.entries[progress.UserID+"/"+progress.EpisodeID] = progress
	return nil
}

func (s *inMemoryProgressStore) Find(_ context.Context, userID, episodeID string) (models.ViewingProgress, error) {
	progress, ok := s.entries[userID+"/"+episodeID]
	if !ok {
		return models.ViewingProgress{}, repositories.ErrNotFound
	}
	return progress, nil
}

type recordingProgressCache struct {
	writes  []models.ViewingProgress
	entries map[string]models.ViewingProgress
}

func (c *recordingProgressCache) Set(_ context.Context, progress models.ViewingProgress) error {
	c.writes = append(c.writes, progress)
	if c.entries == nil {
		c.entries = make(map[string]models.ViewingProgress)
	}
	c.entries[progress.UserID+"/"+progress.EpisodeID] = progress
	return nil
}

func (c *recordingProgressCache) Get(_ context.Context, userID, episodeID string) (models.ViewingProgress, error) {
	progress, ok := c.entries[userID+"/"+episodeID]
	if !ok {
		return models.ViewingProgress{}, cache.ErrProgressMiss
	}
	return progress, nil
}

type stubTrending struct {
	entries []trending.Entry
	err     error
}

func (s stubTrending) Top(_ context.Context, n int) ([]trending.Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.entries) > n {
		return s.entries[:n], nil
	}
	return s.entries, nil
}

type recordingAnalyticsSink struct {
	views     []analytics.ViewingLog
	behaviors []analytics.UserBehavior
	metrics   []analytics.PerformanceMetric
	errors    []analytics.ErrorLog
}

func (s *recordingAnalyticsSink) RecordView(_ context.Context, log analytics.ViewingLog) error {
	s.views = append(s.views, log)
	return nil
}

func (s *recordingAnalyticsSink) RecordBehavior(_ context.Context, behavior analytics.UserBehavior) error {
	s.behaviors = append(s.behaviors, behavior)
	return nil
}

func (s *recordingAnalyticsSink) RecordMetric(_ context.Context, metric analytics.PerformanceMetric) error {
	s.metrics = append(s.metrics, metric)
	return nil
}

func (s *recordingAnalyticsSink) RecordError(_ context.Context, log analytics.ErrorLog) error {
	s.errors = append(s.errors, log)
	return nil
}

func (s *recordingAnalyticsSink) RecentViews(_ context.Context, userID string, limit int) ([]analytics.ViewingLog, error) {
	var logs []analytics.ViewingLog
	for i := len(s.views) - 1; i >= 0 && len(logs) < limit; i-- {
		if s.views[i].UserID == userID {
			logs = append(logs, s.views[i])
		}
	}
	return logs, nil
}
