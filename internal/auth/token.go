package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, carries a bad
	// signature, or fails claim validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager issues and verifies signed, time-limited session tokens.
// Tokens are stateless: validity is determined purely by the HS256 signature
// and the embedded expiry, so there is no revocation list.
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	// NowFunc overrides the clock, primarily for tests.
	NowFunc func() time.Time
}

// NewTokenManager constructs a TokenManager signing with the provided
// symmetric secret and issuing tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if secret == "" {
		panic("auth: token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token embedding the subject and an expiry of now+TTL.
func (m *TokenManager) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("auth: subject must be provided")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token's signature and expiry and returns the embedded
// subject. Expired tokens fail with ErrTokenExpired; every other failure mode
// collapses to ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (m *TokenManager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc().UTC()
	}
	return time.Now().UTC()
}
