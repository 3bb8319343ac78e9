package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

// tokenClaims is the signed JWT payload: registered claims plus the user's
// role and the access/refresh type tag.
type tokenClaims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService implements ports.TokenService with HMAC-signed JWTs.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds the issuer. Only the HMAC family (HS256, HS384,
// HS512) is accepted; anything else fails here so a misconfigured deployment
// dies at startup instead of at the first login.
func NewTokenService(secret, algorithm, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token service: signing secret is empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token service: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token service: algorithm %q is not in the HMAC family", algorithm)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token service: non-positive TTL (access=%s refresh=%s)", accessTTL, refreshTTL)
	}

	return &TokenService{
		secret:     []byte(secret),
		method:     method,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Issue mints a fresh access + refresh pair for the user. Each token carries
// its own jti so the refresh token can be revoked independently.
func (s *TokenService) Issue(user *domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	access, accessExp, err := s.sign(user, domain.TokenAccess, now, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(user, domain.TokenRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess mints only a new access token, used by the silent-refresh path.
func (s *TokenService) IssueAccess(user *domain.User) (string, time.Time, error) {
	return s.sign(user, domain.TokenAccess, time.Now().UTC(), s.accessTTL)
}

func (s *TokenService) sign(user *domain.User, typ domain.TokenType, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := tokenClaims{
		Role: string(user.Role),
		Type: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

// Validate verifies signature, expiry, and the embedded type tag.
// The signing algorithm is pinned: a token signed with anything but the
// configured method is rejected regardless of its payload.
func (s *TokenService) Validate(token string, typ domain.TokenType) (*ports.TokenClaims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}

	if domain.TokenType(claims.Type) != typ {
		return nil, domain.ErrTokenWrongType
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	out := &ports.TokenClaims{
		UserID:  userID,
		Role:    domain.Role(claims.Role),
		TokenID: claims.ID,
		Type:    domain.TokenType(claims.Type),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
