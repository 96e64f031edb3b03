package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streamvault/backend/internal/logging"
	"github.com/streamvault/backend/internal/models"
	"github.com/streamvault/backend/internal/repositories"
)

// CatalogHandler implements series and episode browsing endpoints.
type CatalogHandler struct {
	Catalog CatalogStore
	NowFunc func() time.Time
}

// Series handles GET and POST /api/v1/series requests.
func (h CatalogHandler) Series(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSeries(w, r)
	case http.MethodPost:
		h.createSeries(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h CatalogHandler) listSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}

	series, err := h.Catalog.ListSeries(ctx, skip, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list series failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list series")
		return
	}

	payload := make([]seriesResponse, 0, len(series))
	for _, s := range series {
		payload = append(payload, newSeriesResponse(s))
	}
	respondJSON(ctx, w, http.StatusOK, payload)
}

func (h CatalogHandler) createSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req createSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid series payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	series := models.Series{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ReleaseYear: req.ReleaseYear,
		Genre:       req.Genre,
		Rating:      req.Rating,
		CreatedAt:   h.now(),
	}

	if err := h.Catalog.CreateSeries(ctx, series); err != nil {
		logger.Error("create series failed", "error", err, "title", req.Title)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create series")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, newSeriesResponse(series))
}

// SeriesByID handles GET /api/v1/series/{id} requests.
func (h CatalogHandler) SeriesByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	seriesID := r.PathValue("id")

	series, err := h.Catalog.FindSeries(ctx, seriesID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "series not found")
			return
		}
		logging.FromContext(ctx).Error("find series failed", "error", err, "seriesId", seriesID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load series")
		return
	}

	respondJSON(ctx, w, http.StatusOK, newSeriesResponse(series))
}

// Episodes handles GET /api/v1/series/{id}/episodes requests.
func (h CatalogHandler) Episodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	seriesID := r.PathValue("id")

	if _, err := h.Catalog.FindSeries(ctx, seriesID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "series not found")
			return
		}
		logging.FromContext(ctx).Error("find series failed", "error", err, "seriesId", seriesID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load series")
		return
	}

	episodes, err := h.Catalog.ListEpisodes(ctx, seriesID)
	if err != nil {
		logging.FromContext(ctx).Error("list episodes failed", "error", err, "seriesId", seriesID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list episodes")
		return
	}

	payload := make([]episodeResponse, 0, len(episodes))
	for _, e := range episodes {
		payload = append(payload, episodeResponse{
			ID:            e.ID,
			SeriesID:      e.SeriesID,
			SeasonNumber:  e.SeasonNumber,
			EpisodeNumber: e.EpisodeNumber,
			Title:         e.Title,
			Duration:      e.Duration,
			Description:   e.Description,
		})
	}
	respondJSON(ctx, w, http.StatusOK, payload)
}

type createSeriesRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ReleaseYear int    `json:"releaseYear"`
	Genre       string `json:"genre"`
	Rating      string `json:"rating"`
}

type seriesResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ReleaseYear int    `json:"releaseYear"`
	Genre       string `json:"genre"`
	Rating      string `json:"rating"`
}

type episodeResponse struct {
	ID            string `json:"id"`
	SeriesID      string `json:"seriesId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	Duration      int    `json:"duration"`
	Description   string `json:"description"`
}

func newSeriesResponse(s models.Series) seriesResponse {
	return seriesResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		ReleaseYear: s.ReleaseYear,
		Genre:       s.Genre,
		Rating:      s.Rating,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func (h CatalogHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
