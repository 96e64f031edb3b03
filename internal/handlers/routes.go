package handlers

import (
	"net/http"

	"github.com/streamvault/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Tokens: deps.Tokens, Passwords: deps.Passwords, Limiter: deps.AuthLimiter}
	catalog := CatalogHandler{Catalog: deps.Catalog}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	viewing := ViewingHandler{
		Catalog:       deps.Catalog,
		Subscriptions: deps.Subscriptions,
		Progress:      deps.Progress,
		ProgressCache: deps.ProgressCache,
		Sessions:      deps.Sessions,
		Trending:      deps.Trending,
		Analytics:     deps.Analytics,
	}
	history := AnalyticsHandler{Analytics: deps.Analytics}

	requireAuth := middleware.Authenticate(deps.Verifier, deps.Users)

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/register", auth.Register)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.Handle("/api/v1/auth/me", requireAuth(http.HandlerFunc(auth.Me)))

	mux.Handle("/api/v1/series", requireAuth(http.HandlerFunc(catalog.Series)))
	mux.Handle("/api/v1/series/{id}", requireAuth(http.HandlerFunc(catalog.SeriesByID)))
	mux.Handle("/api/v1/series/{id}/episodes", requireAuth(http.HandlerFunc(catalog.Episodes)))

	mux.Handle("/api/v1/subscriptions", requireAuth(http.HandlerFunc(subscriptions.Create)))
	mux.Handle("/api/v1/subscriptions/current", requireAuth(http.HandlerFunc(subscriptions.Current)))
	mux.Handle("/api/v1/subscriptions/cancel", requireAuth(http.HandlerFunc(subscriptions.Cancel)))

	mux.Handle("/api/v1/viewing-progress", requireAuth(http.HandlerFunc(viewing.UpdateProgress)))
	mux.Handle("/api/v1/viewing-progress/{episode_id}", requireAuth(http.HandlerFunc(viewing.GetProgress)))
	mux.Handle("/api/v1/viewing-sessions/start", requireAuth(http.HandlerFunc(viewing.StartSession)))
	mux.Handle("/api/v1/viewing-sessions/end", requireAuth(http.HandlerFunc(viewing.EndSession)))
	mux.Handle("/api/v1/trending", requireAuth(http.HandlerFunc(viewing.TrendingList)))

	mux.Handle("/api/v1/analytics/users/{id}", requireAuth(http.HandlerFunc(history.UserHistory)))
	mux.Handle("/api/v1/analytics/events", requireAuth(http.HandlerFunc(history.IngestEvent)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Tokens        TokenIssuer
	Verifier      middleware.TokenVerifier
	Passwords     CredentialHasher
	Catalog       CatalogStore
	Subscriptions SubscriptionStore
	Progress      ProgressStore
	ProgressCache ProgressCacher
	Sessions      SessionAdmitter
	Trending      TrendingProvider
	Analytics     AnalyticsSink
	AuthLimiter   RateLimiter
}
