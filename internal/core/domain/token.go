package domain

import "time"

// TokenType tags a JWT as access or refresh so one can never stand in for
// the other: validation fails with ErrTokenWrongType on a mismatch.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenPair is the full set of credentials minted on a successful login.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
