package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
//
// Create and Update rely on the database's unique indexes for username and
// email: a violation surfaces as domain.ErrUserExists. There is deliberately
// no Exists probe, so concurrent registrations cannot race past a pre-check.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns one page of users ordered by creation time plus the total count.
	List(ctx context.Context, page, limit int) ([]domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
