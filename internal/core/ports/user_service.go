package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// RegisterUserInput carries all data needed to create a new account.
// Optional profile fields may be empty.
type RegisterUserInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Phone    string
	Gender   string
	Address  string
	Role     string
	// Active defaults to true when nil.
	Active *bool
}

// UpdateUserInput is a partial update: nil fields stay unchanged.
// Password, when present, is re-hashed before persisting.
type UpdateUserInput struct {
	Username *string
	Password *string
	Email    *string
	FullName *string
	Phone    *string
	Gender   *string
	Address  *string
	Role     *string
	Active   *bool
}

// UpdateProfileInput is the self-service subset of UpdateUserInput:
// a user may edit their own contact details and password, never their
// username, role, or active flag.
type UpdateProfileInput struct {
	Password *string
	Email    *string
	FullName *string
	Phone    *string
	Gender   *string
	Address  *string
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService covers account administration. Every operation takes the
// calling user and enforces its own role requirement; admin-only operations
// fail with domain.ErrForbidden before touching storage.
type UserService interface {
	Register(ctx context.Context, caller *domain.User, in RegisterUserInput) (*domain.User, error)
	List(ctx context.Context, caller *domain.User, page, limit int) (*UserPage, error)
	Update(ctx context.Context, caller *domain.User, id uuid.UUID, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error
	UpdateProfile(ctx context.Context, caller *domain.User, in UpdateProfileInput) (*domain.User, error)
}
