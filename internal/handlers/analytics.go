package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/streamvault/backend/internal/analytics"
	"github.com/streamvault/backend/internal/logging"
	"github.com/streamvault/backend/internal/middleware"
)

// AnalyticsHandler ingests client telemetry and serves per-user viewing
// history from the document store.
type AnalyticsHandler struct {
	Analytics AnalyticsSink
	NowFunc   func() time.Time
}

// UserHistory handles GET /api/v1/analytics/users/{id} requests.
func (h AnalyticsHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID := r.PathValue("id")
	if userID == "" {
		respondError(ctx, w, http.StatusBadRequest, "user id is required")
		return
	}

	limit := queryInt(r, "limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	logs, err := h.Analytics.RecentViews(ctx, userID, limit)
	if err != nil {
		logging.FromContext(ctx).Error("viewing history lookup failed", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load viewing history")
		return
	}

	if logs == nil {
		logs = []analytics.ViewingLog{}
	}
	respondJSON(ctx, w, http.StatusOK, logs)
}

// IngestEvent handles POST /api/v1/analytics/events requests. Each event is
// appended to the collection matching its type.
func (h AnalyticsHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
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

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid event payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := h.now()

	var err error
	switch req.Type {
	case eventTypeBehavior:
		if req.ActionType == "" {
			respondError(ctx, w, http.StatusBadRequest, "action_type is required for behavior events")
			return
		}
		err = h.Analytics.RecordBehavior(ctx, analytics.UserBehavior{
			UserID:     user.ID,
			ActionType: req.ActionType,
			Timestamp:  now,
			Details:    req.Details,
		})
	case eventTypeMetric:
		if req.MetricType == "" {
			respondError(ctx, w, http.StatusBadRequest, "metric_type is required for metric events")
			return
		}
		err = h.Analytics.RecordMetric(ctx, analytics.PerformanceMetric{
			MetricType: req.MetricType,
			Value:      req.Value,
			Timestamp:  now,
			Details:    req.Details,
		})
	case eventTypeError:
		if req.ErrorType == "" {
			respondError(ctx, w, http.StatusBadRequest, "error_type is required for error events")
			return
		}
		err = h.Analytics.RecordError(ctx, analytics.ErrorLog{
			ErrorType:  req.ErrorType,
			Severity:   req.Severity,
			Message:    req.Message,
			Timestamp:  now,
			StackTrace: req.StackTrace,
		})
	default:
		respondError(ctx, w, http.StatusBadRequest, "type must be behavior, metric or error")
		return
	}

	if err != nil {
		logger.Error("record telemetry event failed", "error", err, "type", req.Type, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to record event")
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

const (
	eventTypeBehavior = "behavior"
	eventTypeMetric   = "metric"
	eventTypeError    = "error"
)

type eventRequest struct {
	Type string `json:"type"`

	ActionType string         `json:"action_type,omitempty"`
	Details    map[string]any `json:"details,omitempty"`

	MetricType string  `json:"metric_type,omitempty"`
	Value      float64 `json:"value,omitempty"`

	ErrorType  string `json:"error_type,omitempty"`
	Severity   string `json:"severity,omitempty"`
	Message    string `json:"message,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
}

func (h AnalyticsHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
