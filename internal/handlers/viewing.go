package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/streamvault/backend/internal/analytics"
	"github.com/streamvault/backend/internal/cache"
	"github.com/streamvault/backend/internal/logging"
	"github.com/streamvault/backend/internal/middleware"
	"github.com/streamvault/backend/internal/models"
	"github.com/streamvault/backend/internal/repositories"
	"github.com/streamvault/backend/internal/sessions"
	"github.com/streamvault/backend/internal/trending"
)

// ViewingHandler implements viewing progress, viewing session, and trending endpoints.
type ViewingHandler struct {
	Catalog       CatalogStore
	Subscriptions SubscriptionStore
	Progress      ProgressStore
	ProgressCache ProgressCacher
	Sessions      SessionAdmitter
	Trending      TrendingProvider
	Analytics     AnalyticsSink
	NowFunc       func() time.Time
}

// UpdateProgress handles POST /api/v1/viewing-progress requests.
func (h ViewingHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid progress payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.EpisodeID == "" || req.Progress < 0 {
		respondError(ctx, w, http.StatusBadRequest, "episode_id and a non-negative progress are required")
		return
	}

	if _, err := h.Catalog.FindEpisode(ctx, req.EpisodeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "episode not found")
			return
		}
		logger.Error("find episode failed", "error", err, "episodeId", req.EpisodeID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load episode")
		return
	}

	active, err := h.Subscriptions.HasActive(ctx, user.ID)
	if err != nil {
		logger.Error("subscription check failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to verify subscription")
		return
	}
	if !active {
		respondError(ctx, w, http.StatusForbidden, "active subscription required")
		return
	}

	progress := models.ViewingProgress{
		UserID:    user.ID,
		EpisodeID: req.EpisodeID,
		Progress:  req.Progress,
		UpdatedAt: h.now(),
	}

	if err := h.Progress.Upsert(ctx, progress); err != nil {
		logger.Error("progress upsert failed", "error", err, "userId", user.ID, "episodeId", req.EpisodeID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update viewing progress")
		return
	}

	if h.ProgressCache != nil {
		if err := h.ProgressCache.Set(ctx, progress); err != nil {
			logger.Warn("progress cache write failed", "error", err, "userId", user.ID)
		}
	}

	if h.Analytics != nil {
		log := analytics.ViewingLog{
			UserID:    user.ID,
			EpisodeID: req.EpisodeID,
			Progress:  req.Progress,
			Action:    analytics.ActionPlay,
			Timestamp: progress.UpdatedAt,
		}
		if err := h.Analytics.RecordView(ctx, log); err != nil {
			logger.Warn("viewing log write failed", "error", err, "userId", user.ID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "success"})
}

// GetProgress handles GET /api/v1/viewing-progress/{episode_id} requests. The
// cached snapshot answers when present; otherwise the durable row is read and
// re-cached.
func (h ViewingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	episodeID := r.PathValue("episode_id")
	if episodeID == "" {
		respondError(ctx, w, http.StatusBadRequest, "episode id is required")
		return
	}

	if h.ProgressCache != nil {
		cached, err := h.ProgressCache.Get(ctx, user.ID, episodeID)
		if err == nil {
			respondJSON(ctx, w, http.StatusOK, newProgressResponse(cached))
			return
		}
		if !errors.Is(err, cache.ErrProgressMiss) {
			logger.Warn("progress cache read failed", "error", err, "userId", user.ID)
		}
	}

	progress, err := h.Progress.Find(ctx, user.ID, episodeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "no viewing progress found")
			return
		}
		logger.Error("find viewing progress failed", "error", err, "userId", user.ID, "episodeId", episodeID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load viewing progress")
		return
	}

	if h.ProgressCache != nil {
		if err := h.ProgressCache.Set(ctx, progress); err != nil {
			logger.Warn("progress cache write failed", "error", err, "userId", user.ID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, newProgressResponse(progress))
}

// StartSession handles POST /api/v1/viewing-sessions/start requests.
func (h ViewingHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid session payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.EpisodeID == "" {
		respondError(ctx, w, http.StatusBadRequest, "episode_id is required")
		return
	}

	active, err := h.Subscriptions.HasActive(ctx, user.ID)
	if err != nil {
		logger.Error("subscription check failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to verify subscription")
		return
	}
	if !active {
		respondError(ctx, w, http.StatusForbidden, "active subscription required")
		return
	}

	sessionID, err := h.Sessions.Start(ctx, user.ID, req.EpisodeID)
	if err != nil {
		if errors.Is(err, sessions.ErrTooManySessions) {
			logger.Warn("viewing session limit reached", "userId", user.ID)
			respondError(ctx, w, http.StatusTooManyRequests, "maximum concurrent viewing sessions reached")
			return
		}
		logger.Error("start viewing session failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to start viewing session")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, sessionResponse{SessionID: sessionID})
}

// EndSession handles POST /api/v1/viewing-sessions/end requests.
func (h ViewingHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req endSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid session payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		respondError(ctx, w, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := h.Sessions.End(ctx, user.ID, req.SessionID); err != nil {
		logger.Error("end viewing session failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to end viewing session")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "success"})
}

// Trending handles GET /api/v1/trending requests.
func (h ViewingHandler) TrendingList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	limit := queryInt(r, "limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := h.Trending.Top(ctx, limit)
	if err != nil {
		logging.FromContext(ctx).Error("trending lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load trending content")
		return
	}

	if entries == nil {
		entries = []trending.Entry{}
	}
	respondJSON(ctx, w, http.StatusOK, entries)
}

type progressRequest struct {
	EpisodeID string `json:"episode_id"`
	Progress  int    `json:"progress"`
}

type progressResponse struct {
	EpisodeID string    `json:"episodeId"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newProgressResponse(p models.ViewingProgress) progressResponse {
	return progressResponse{
		EpisodeID: p.EpisodeID,
		Progress:  p.Progress,
		UpdatedAt: p.UpdatedAt,
	}
}

type startSessionRequest struct {
	EpisodeID string `json:"episode_id"`
}

type endSessionRequest struct {
	SessionID string `json:"session_id"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

func (h ViewingHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
