package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

const testSecret = "test-secret"

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, "HS256", "auth-core", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func testUser(role domain.Role) *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Username: "alice",
		Role:     role,
		Active:   true,
	}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	ts := newTestTokens(t)
	user := testUser(domain.RoleAdmin)

	pair, err := ts.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("refresh should outlive access: %v vs %v", pair.RefreshExpiresAt, pair.AccessExpiresAt)
	}

	claims, err := ts.Validate(pair.AccessToken, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Validate access: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != domain.RoleAdmin {
		t.Fatalf("expected role ADMIN, got %s", claims.Role)
	}
	if claims.Type != domain.TokenAccess {
		t.Fatalf("expected access type, got %s", claims.Type)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected a jti")
	}

	refreshClaims, err := ts.Validate(pair.RefreshToken, domain.TokenRefresh)
	if err != nil {
		t.Fatalf("Validate refresh: %v", err)
	}
	if refreshClaims.TokenID == claims.TokenID {
		t.Fatalf("access and refresh must carry distinct jti values")
	}
}

func TestTokenService_TypeMismatch(t *testing.T) {
	ts := newTestTokens(t)
	pair, err := ts.Issue(testUser(domain.RoleUser))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := ts.Validate(pair.RefreshToken, domain.TokenAccess); !errors.Is(err, domain.ErrTokenWrongType) {
		t.Fatalf("refresh-as-access: expected ErrTokenWrongType, got %v", err)
	}
	if _, err := ts.Validate(pair.AccessToken, domain.TokenRefresh); !errors.Is(err, domain.ErrTokenWrongType) {
		t.Fatalf("access-as-refresh: expected ErrTokenWrongType, got %v", err)
	}
}

func TestTokenService_Expired(t *testing.T) {
	ts := newTestTokens(t)
	user := testUser(domain.RoleUser)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"typ":  "access",
		"jti":  uuid.NewString(),
		"iat":  time.Now().Add(-2 * time.Hour).Unix(),
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ts.Validate(signed, domain.TokenAccess); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	ts := newTestTokens(t)
	user := testUser(domain.RoleUser)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"typ":  "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ts.Validate(signed, domain.TokenAccess); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_AlgorithmPinned(t *testing.T) {
	ts := newTestTokens(t)
	user := testUser(domain.RoleUser)

	// Signed with HS384 while the service expects HS256.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"typ":  "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ts.Validate(signed, domain.TokenAccess); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Garbage(t *testing.T) {
	ts := newTestTokens(t)
	if _, err := ts.Validate("not-a-token", domain.TokenAccess); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestNewTokenService_Config(t *testing.T) {
	if _, err := NewTokenService("", "HS256", "auth-core", time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewTokenService("s", "RS256", "auth-core", time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for non-HMAC algorithm")
	}
	if _, err := NewTokenService("s", "HS999", "auth-core", time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
	if _, err := NewTokenService("s", "HS256", "auth-core", 0, time.Hour); err == nil {
		t.Fatalf("expected error for zero access TTL")
	}
	if _, err := NewTokenService("s", "HS512", "auth-core", time.Minute, time.Hour); err != nil {
		t.Fatalf("HS512 should be accepted: %v", err)
	}
}
