package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/velora-dev/auth-core/internal/core/ports"
)

// bcryptHasher implements ports.PasswordHasher on top of bcrypt.
type bcryptHasher struct {
	cost int
}

// NewPasswordHasher returns a bcrypt-backed hasher. A cost outside bcrypt's
// supported range falls back to the library default.
func NewPasswordHasher(cost int) ports.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify runs bcrypt's constant-time comparison.
func (h *bcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
