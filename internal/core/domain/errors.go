package domain

import "errors"

var (
	// ErrInvalidCredentials is returned on any failed login attempt. The same
	// value covers unknown username, wrong password, and deactivated account
	// so a caller cannot probe which of the three it hit.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenWrongType = errors.New("token type mismatch")
)
