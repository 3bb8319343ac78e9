package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// UserEventPublisher pushes account lifecycle messages onto the event bus.
// The bus is a side channel, not part of the transaction: publish failures
// are logged and swallowed.
type UserEventPublisher interface {
	Publish(ctx context.Context, event domain.UserEvent) error
}

// Notifier pushes a realtime notice to a user's live connections.
type Notifier interface {
	NotifyUser(userID uuid.UUID, kind string, data any)
}

// UserService implements ports.UserService. Every admin operation starts
// with a RequireRole check, independent of any transport-level guard.
type UserService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	events   UserEventPublisher
	notifier Notifier
	log      zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	events UserEventPublisher,
	notifier Notifier,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		events:   events,
		notifier: notifier,
		log:      log,
	}
}

// Register creates a new account. There is no existence pre-check: the
// insert goes straight to the unique index and a duplicate username or
// email comes back as ErrUserExists, so concurrent registrations cannot
// race past each other.
func (s *UserService) Register(ctx context.Context, caller *domain.User, in ports.RegisterUserInput) (*domain.User, error) {
	if err := domain.RequireRole(caller.Role, domain.RoleAdmin); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
		Gender:       in.Gender,
		Address:      in.Address,
		Role:         role,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", created.ID.String()).
		Str("username", created.Username).
		Str("role", string(created.Role)).
		Msg("user registered")

	s.publish(ctx, domain.AuditUserCreated, created)
	return created, nil
}

// List returns one page of users. Defaults: page 1, limit 10, limit capped
// at 100.
func (s *UserService) List(ctx context.Context, caller *domain.User, page, limit int) (*ports.UserPage, error) {
	if err := domain.RequireRole(caller.Role, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial update to any user. Unique-index conflicts on a
// changed username or email surface as ErrUserExists.
func (s *UserService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, in ports.UpdateUserInput) (*domain.User, error) {
	if err := domain.RequireRole(caller.Role, domain.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyPatch(user, in); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", updated.ID.String()).Msg("user updated")
	s.publish(ctx, domain.AuditUserUpdated, updated)
	s.notifyUpdate(updated, in)
	return updated, nil
}

// Delete removes the account permanently. Deactivation via Update is the
// usual path; hard delete exists for data-removal requests.
func (s *UserService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if err := domain.RequireRole(caller.Role, domain.RoleAdmin); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", id.String()).
		Str("username", user.Username).
		Msg("user deleted")

	s.publish(ctx, domain.AuditUserDeleted, user)
	if s.notifier != nil {
		s.notifier.NotifyUser(id, "account.deleted", nil)
	}
	return nil
}

// UpdateProfile is the self-service variant of Update: callers may change
// their own contact details and password, never their username, role, or
// active flag.
func (s *UserService) UpdateProfile(ctx context.Context, caller *domain.User, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	patch := ports.UpdateUserInput{
		Password: in.Password,
		Email:    in.Email,
		FullName: in.FullName,
		Phone:    in.Phone,
		Gender:   in.Gender,
		Address:  in.Address,
	}
	if err := s.applyPatch(user, patch); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", updated.ID.String()).Msg("profile updated")
	s.publish(ctx, domain.AuditProfileUpdated, updated)
	return updated, nil
}

// applyPatch copies set fields onto user, re-hashing the password and
// validating the role.
func (s *UserService) applyPatch(user *domain.User, in ports.UpdateUserInput) error {
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Gender != nil {
		user.Gender = *in.Gender
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return err
		}
		user.Role = role
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *UserService) publish(ctx context.Context, action string, user *domain.User) {
	if s.events == nil {
		return
	}
	event := domain.UserEvent{
		Action:     action,
		UserID:     user.ID.String(),
		Username:   user.Username,
		Role:       user.Role,
		Active:     user.Active,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to publish user event")
	}
}

// notifyUpdate tells the affected user's live connections about the change.
// Deactivation gets its own kind so clients can drop the session at once.
func (s *UserService) notifyUpdate(user *domain.User, in ports.UpdateUserInput) {
	if s.notifier == nil {
		return
	}
	kind := "account.updated"
	if in.Active != nil && !*in.Active {
		kind = "account.deactivated"
	}
	s.notifier.NotifyUser(user.ID, kind, map[string]any{
		"username":  user.Username,
		"role":      user.Role,
		"is_active": user.Active,
	})
}
