package ports

import (
	"context"
	"time"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// RefreshedAccess carries a replacement access token minted during a silent
// refresh, so the transport layer can re-set the cookie.
type RefreshedAccess struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService drives the session lifecycle:
//
//	anonymous -> authenticated -> access expired (refresh valid) -> anonymous
type AuthService interface {
	// Login verifies credentials and issues a token pair. Unknown username,
	// wrong password, and deactivated account all fail identically with
	// domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*domain.User, *domain.TokenPair, error)

	// Authenticate resolves the current user from the access token; when the
	// access token is expired but the refresh token still validates, it mints
	// a replacement access token and returns it alongside the user. The user
	// row is re-read on every call: a deleted or deactivated account fails
	// with domain.ErrUnauthorized even while its tokens are formally valid.
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*domain.User, *RefreshedAccess, error)

	// Refresh exchanges a valid, unrevoked refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*domain.User, *RefreshedAccess, error)

	// Logout revokes the refresh token's jti best-effort. It never fails:
	// clearing cookies is the transport's job and must happen regardless.
	Logout(ctx context.Context, refreshToken string)
}
