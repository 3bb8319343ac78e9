package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

// TokenRevoker abstracts the refresh-token denylist (Redis). A nil revoker
// disables revocation: logout becomes cookie-clearing only and refresh skips
// the denylist lookup, leaving tokens fully stateless.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService implements ports.AuthService.
type AuthService struct {
	repo    ports.UserRepository
	tokens  ports.TokenService
	hasher  ports.PasswordHasher
	revoker TokenRevoker
	log     zerolog.Logger

	// dummyHash keeps the unknown-username lane as slow as a real compare.
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	tokens ports.TokenService,
	hasher ports.PasswordHasher,
	revoker TokenRevoker,
	log zerolog.Logger,
) *AuthService {
	dummy, _ := hasher.Hash("not-a-real-password")
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		hasher:    hasher,
		revoker:   revoker,
		log:       log,
		dummyHash: dummy,
	}
}

// Login verifies credentials and issues a token pair. Unknown username,
// wrong password, and deactivated account all fail with the same
// ErrInvalidCredentials so the response never reveals which check tripped.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *domain.TokenPair, error) {
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a compare so the miss costs as much as a mismatch.
			s.hasher.Verify(password, s.dummyHash)
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Debug().Str("username", username).Msg("password mismatch")
		return nil, nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		s.log.Debug().Str("username", username).Msg("login attempt on deactivated account")
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("login succeeded")

	return user, pair, nil
}

// Authenticate resolves the session user from the cookie pair. Any access
// token failure (missing, malformed, expired) falls through to the refresh
// lane; browsers drop the access cookie at expiry, so the missing case is
// the common one. A successful refresh lane returns the replacement access
// token for the caller to re-set as a cookie.
func (s *AuthService) Authenticate(ctx context.Context, accessToken, refreshToken string) (*domain.User, *ports.RefreshedAccess, error) {
	if accessToken != "" {
		claims, err := s.tokens.Validate(accessToken, domain.TokenAccess)
		if err == nil {
			user, uerr := s.sessionUser(ctx, claims.UserID)
			if uerr != nil {
				return nil, nil, uerr
			}
			return user, nil, nil
		}
	}

	if refreshToken == "" {
		return nil, nil, domain.ErrUnauthorized
	}
	return s.Refresh(ctx, refreshToken)
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
// The user row is re-read so a role change lands in the minted token and a
// deleted or deactivated account is cut off. All failures collapse into
// ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *ports.RefreshedAccess, error) {
	claims, err := s.tokens.Validate(refreshToken, domain.TokenRefresh)
	if err != nil {
		return nil, nil, domain.ErrUnauthorized
	}

	if s.revoker != nil {
		revoked, rerr := s.revoker.IsRevoked(ctx, claims.TokenID)
		if rerr != nil {
			// Fail closed: accepting a possibly-revoked token is worse
			// than forcing a re-login while Redis is down.
			s.log.Warn().Err(rerr).Msg("revocation lookup failed, rejecting refresh")
			return nil, nil, domain.ErrUnauthorized
		}
		if revoked {
			s.log.Debug().Str("jti", claims.TokenID).Msg("refresh attempt with revoked token")
			return nil, nil, domain.ErrUnauthorized
		}
	}

	user, err := s.sessionUser(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	token, expiresAt, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, nil, err
	}

	s.log.Debug().Str("user_id", user.ID.String()).Msg("access token refreshed")
	return user, &ports.RefreshedAccess{Token: token, ExpiresAt: expiresAt}, nil
}

// Logout denylists the refresh token's jti for its remaining lifetime.
// Nothing here may fail the request: an unparseable token or a Redis error
// just means the token dies by expiry instead.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if s.revoker == nil || refreshToken == "" {
		return
	}

	claims, err := s.tokens.Validate(refreshToken, domain.TokenRefresh)
	if err != nil {
		return
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return
	}

	if err := s.revoker.Revoke(ctx, claims.TokenID, ttl); err != nil {
		s.log.Warn().Err(err).Msg("failed to revoke refresh token")
		return
	}
	s.log.Debug().Str("jti", claims.TokenID).Msg("refresh token revoked")
}

// sessionUser re-reads the token subject from storage on every call, so a
// deleted or deactivated account loses its session immediately even while
// its tokens are formally valid.
func (s *AuthService) sessionUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
