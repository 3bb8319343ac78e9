package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level attached to a user account.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleUser    Role = "USER"
	RoleChecker Role = "CHECKER"
	RoleEntry   Role = "ENTRY"
)

// Roles lists every assignable role, in display order.
var Roles = []Role{RoleAdmin, RoleUser, RoleChecker, RoleEntry}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleChecker, RoleEntry:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// RequireRole returns nil when role is one of allowed, ErrForbidden otherwise.
// Every privileged service operation calls this before doing anything else.
func RequireRole(role Role, allowed ...Role) error {
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return ErrForbidden
}

// User models an account able to authenticate against the API.
// PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullname,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         Role      `json:"role"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
