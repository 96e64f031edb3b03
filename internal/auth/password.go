package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates a password did not match the stored hash.
var ErrInvalidCredentials = errors.New("invalid credentials")

// PasswordHasher hashes and verifies passwords using bcrypt. bcrypt salts each
// hash internally, so hashing the same plaintext twice yields different
// outputs, and comparison runs in constant time.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the provided bcrypt cost, clamped to
// the range bcrypt accepts. A zero or negative cost falls back to the default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash produces a salted bcrypt hash of the plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext password matches the stored hash.
// A mismatch returns ErrInvalidCredentials; other errors indicate a malformed hash.
func (h *PasswordHasher) Verify(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}
