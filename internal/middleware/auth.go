package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/streamvault/backend/internal/logging"
	"github.com/streamvault/backend/internal/models"
)

type userCtxKey struct{}

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SubjectResolver loads the user record behind a verified token subject.
type SubjectResolver interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.User)
	return user, ok
}

// Authenticate validates the Authorization bearer token on each request and
// resolves the subject to a user record. Missing, malformed, expired, or
// unresolvable tokens are rejected with 401 before the handler runs.
func Authenticate(tokens TokenVerifier, users SubjectResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			header := strings.TrimSpace(r.Header.Get("Authorization"))
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.Warn("missing or malformed authorization header")
				unauthorized(w)
				return
			}

			subject, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Warn("token verification failed", "error", err)
				unauthorized(w)
				return
			}

			user, err := users.FindByUsername(ctx, subject)
			if err != nil {
				logger.Warn("token subject not found", "subject", subject, "error", err)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired credentials"})
}
