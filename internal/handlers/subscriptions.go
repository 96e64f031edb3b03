package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/streamvault/backend/internal/logging"
	"github.com/streamvault/backend/internal/middleware"
	"github.com/streamvault/backend/internal/models"
	"github.com/streamvault/backend/internal/repositories"
)

// subscriptionTerm is the length of a paid term.
const subscriptionTerm = 30 * 24 * time.Hour

// SubscriptionHandler implements subscription management endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	NowFunc       func() time.Time
}

// Create handles POST /api/v1/subscriptions requests.
func (h SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid subscription payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.PlanType {
	case models.PlanBasic, models.PlanStandard, models.PlanPremium:
	default:
		respondError(ctx, w, http.StatusBadRequest, "plan_type must be basic, standard or premium")
		return
	}

	now := h.now()
	subscription := models.Subscription{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		PlanType:    req.PlanType,
		StartDate:   now,
		EndDate:     now.Add(subscriptionTerm),
		AutoRenewal: req.AutoRenewal,
		Status:      models.SubscriptionActive,
	}

	if err := h.Subscriptions.CreateActive(ctx, subscription); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("duplicate active subscription", "userId", user.ID)
			respondError(ctx, w, http.StatusConflict, "active subscription already exists")
			return
		}
		logger.Error("create subscription failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create subscription")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, newSubscriptionResponse(subscription))
}

// Current handles GET /api/v1/subscriptions/current requests.
func (h SubscriptionHandler) Current(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	subscription, err := h.Subscriptions.FindActive(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "no active subscription found")
			return
		}
		logging.FromContext(ctx).Error("find subscription failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load subscription")
		return
	}

	respondJSON(ctx, w, http.StatusOK, newSubscriptionResponse(subscription))
}

// Cancel handles POST /api/v1/subscriptions/cancel requests.
func (h SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.Subscriptions.CancelActive(ctx, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "no active subscription found")
			return
		}
		logging.FromContext(ctx).Error("cancel subscription failed", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to cancel subscription")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "auto-renewal disabled"})
}

type createSubscriptionRequest struct {
	PlanType    string `json:"plan_type"`
	AutoRenewal bool   `json:"auto_renewal"`
}

type subscriptionResponse struct {
	ID          string    `json:"id"`
	PlanType    string    `json:"planType"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	AutoRenewal bool      `json:"autoRenewal"`
	Status      string    `json:"status"`
}

func newSubscriptionResponse(s models.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:          s.ID,
		PlanType:    s.PlanType,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		AutoRenewal: s.AutoRenewal,
		Status:      s.Status,
	}
}

func (h SubscriptionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
