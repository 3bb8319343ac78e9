package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// TokenClaims is the decoded, verified content of a JWT.
type TokenClaims struct {
	UserID    uuid.UUID
	Role      domain.Role
	TokenID   string // jti, unique per token
	Type      domain.TokenType
	ExpiresAt time.Time
}

// TokenService mints and validates the signed JWT pair.
type TokenService interface {
	// Issue creates a fresh access + refresh pair for the user.
	Issue(user *domain.User) (*domain.TokenPair, error)
	// IssueAccess creates only a new access token (used by silent refresh).
	IssueAccess(user *domain.User) (token string, expiresAt time.Time, err error)
	// Validate verifies signature, expiry, and the embedded token type.
	// Failures map to ErrTokenExpired, ErrTokenWrongType, or ErrTokenInvalid.
	Validate(token string, typ domain.TokenType) (*TokenClaims, error)
}
