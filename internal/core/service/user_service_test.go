package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

type stubPublisher struct {
	events []domain.UserEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, event domain.UserEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type notice struct {
	userID uuid.UUID
	kind   string
}

type stubNotifier struct {
	notices []notice
}

func (n *stubNotifier) NotifyUser(userID uuid.UUID, kind string, _ any) {
	n.notices = append(n.notices, notice{userID: userID, kind: kind})
}

type userFixture struct {
	repo     *stubUserRepo
	events   *stubPublisher
	notifier *stubNotifier
	svc      *UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	repo := newStubUserRepo()
	events := &stubPublisher{}
	notifier := &stubNotifier{}
	svc := NewUserService(repo, NewPasswordHasher(bcrypt.MinCost), events, notifier, zerolog.Nop())
	return &userFixture{repo: repo, events: events, notifier: notifier, svc: svc}
}

func adminCaller() *domain.User {
	return &domain.User{ID: uuid.New(), Username: "root", Role: domain.RoleAdmin, Active: true}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUserService_Register_Success(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Register(context.Background(), adminCaller(), ports.RegisterUserInput{
		Username: "alice",
		Password: "s3cret",
		Email:    "alice@example.com",
		FullName: "Alice Doe",
		Role:     "USER",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if !user.Active {
		t.Fatalf("accounts default to active")
	}

	if len(f.events.events) != 1 || f.events.events[0].Action != domain.AuditUserCreated {
		t.Fatalf("expected one %s event, got %+v", domain.AuditUserCreated, f.events.events)
	}
}

func TestUserService_Register_RequiresAdmin(t *testing.T) {
	f := newUserFixture(t)

	for _, role := range []domain.Role{domain.RoleUser, domain.RoleChecker, domain.RoleEntry} {
		caller := &domain.User{ID: uuid.New(), Username: "bob", Role: role, Active: true}
		_, err := f.svc.Register(context.Background(), caller, ports.RegisterUserInput{
			Username: "eve", Password: "pw", Role: "USER",
		})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("role %s: expected ErrForbidden, got %v", role, err)
		}
	}
	if len(f.events.events) != 0 {
		t.Fatalf("no events expected on forbidden register")
	}
}

func TestUserService_Register_InvalidRole(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.Register(context.Background(), adminCaller(), ports.RegisterUserInput{
		Username: "alice", Password: "pw", Role: "SUPERUSER",
	})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_Register_Duplicate(t *testing.T) {
	f := newUserFixture(t)
	caller := adminCaller()

	if _, err := f.svc.Register(context.Background(), caller, ports.RegisterUserInput{
		Username: "alice", Password: "pw", Role: "USER",
	}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := f.svc.Register(context.Background(), caller, ports.RegisterUserInput{
		Username: "alice", Password: "other", Role: "ENTRY",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Register_PublishFailureIsNotFatal(t *testing.T) {
	f := newUserFixture(t)
	f.events.err = errors.New("broker down")

	if _, err := f.svc.Register(context.Background(), adminCaller(), ports.RegisterUserInput{
		Username: "alice", Password: "pw", Role: "USER",
	}); err != nil {
		t.Fatalf("register must survive a publish failure: %v", err)
	}
}

func TestUserService_List_DefaultsAndTotals(t *testing.T) {
	f := newUserFixture(t)
	caller := adminCaller()

	for i := 0; i < 12; i++ {
		seedListUser(t, f.repo, i)
	}

	page, err := f.svc.List(context.Background(), caller, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 || page.Limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got page=%d limit=%d", page.Page, page.Limit)
	}
	if page.Total != 12 || page.TotalPages != 2 {
		t.Fatalf("expected total=12 pages=2, got total=%d pages=%d", page.Total, page.TotalPages)
	}
	if len(page.Users) != 10 {
		t.Fatalf("expected 10 users on page 1, got %d", len(page.Users))
	}

	second, err := f.svc.List(context.Background(), caller, 2, 10)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(second.Users) != 2 {
		t.Fatalf("expected 2 users on page 2, got %d", len(second.Users))
	}
}

func TestUserService_List_CapsLimit(t *testing.T) {
	f := newUserFixture(t)
	page, err := f.svc.List(context.Background(), adminCaller(), 1, 5000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Limit != maxLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxLimit, page.Limit)
	}
}

func TestUserService_List_RequiresAdmin(t *testing.T) {
	f := newUserFixture(t)
	caller := &domain.User{ID: uuid.New(), Role: domain.RoleUser, Active: true}
	if _, err := f.svc.List(context.Background(), caller, 1, 10); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Update_Patch(t *testing.T) {
	f := newUserFixture(t)
	caller := adminCaller()

	created, err := f.svc.Register(context.Background(), caller, ports.RegisterUserInput{
		Username: "alice", Password: "pw", Email: "old@example.com", Role: "USER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), caller, created.ID, ports.UpdateUserInput{
		Email:    strPtr("new@example.com"),
		Password: strPtr("newpass"),
		Role:     strPtr("CHECKER"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Fatalf("email not updated: %s", updated.Email)
	}
	if updated.Role != domain.RoleChecker {
		t.Fatalf("role not updated: %s", updated.Role)
	}
	if updated.Username != "alice" {
		t.Fatalf("username must be untouched, got %s", updated.Username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpass")); err != nil {
		t.Fatalf("password not re-hashed: %v", err)
	}

	if len(f.notifier.notices) != 1 || f.notifier.notices[0].kind != "account.updated" {
		t.Fatalf("expected account.updated notice, got %+v", f.notifier.notices)
	}
}

func TestUserService_Update_DeactivateNotice(t *testing.T) {
	f := newUserFixture(t)
	caller := adminCaller()

	created, err := f.svc.Register(context.Background(), caller, ports.RegisterUserInput{
		Username: "alice", Password: "pw", Role: "USER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), caller, created.ID, ports.UpdateUserInput{
		Active: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Active {
		t.Fatalf("expected deactivated user")
	}
	if len(f.notifier.notices) != 1 || f.notifier.notices[0].kind != "account.deactivated" {
		t.Fatalf("expected account.deactivated notice, got %+v", f.notifier.notices)
	}
}

func TestUserService_Update_UnknownUser(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.Update(context.Background(), adminCaller(), uuid.New(), ports.UpdateUserInput{
		Email: strPtr("x@example.com"),
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Update_InvalidRole(t *testing.T) {
	f := newUserFixture(t)
	caller := adminCaller()

	created, err := f.svc.Register(context.Background(), caller, ports.RegisterUserInput{
		Username: "alice", Password: "pw", Role: "USER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := f.svc.Update(context.Background(), caller, created.ID, ports.UpdateUserInput{
		Role: strPtr("ROOT"),
	}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	f := newUserFixture(t)
	caller := adminCaller()

	created, err := f.svc.Register(context.Background(), caller, ports.RegisterUserInput{
		Username: "alice", Password: "pw", Role: "USER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := f.svc.Delete(context.Background(), caller, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.repo.FindByID(context.Background(), created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user should be gone, got %v", err)
	}

	last := f.events.events[len(f.events.events)-1]
	if last.Action != domain.AuditUserDeleted {
		t.Fatalf("expected %s event, got %s", domain.AuditUserDeleted, last.Action)
	}

	if err := f.svc.Delete(context.Background(), caller, created.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("second delete: expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Delete_RequiresAdmin(t *testing.T) {
	f := newUserFixture(t)
	caller := &domain.User{ID: uuid.New(), Role: domain.RoleEntry, Active: true}
	if err := f.svc.Delete(context.Background(), caller, uuid.New()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newUserFixture(t)

	created, err := f.svc.Register(context.Background(), adminCaller(), ports.RegisterUserInput{
		Username: "alice", Password: "pw", Role: "USER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := f.svc.UpdateProfile(context.Background(), created, ports.UpdateProfileInput{
		Email:    strPtr("me@example.com"),
		FullName: strPtr("Alice Doe"),
		Password: strPtr("better-pass"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Email != "me@example.com" || updated.FullName != "Alice Doe" {
		t.Fatalf("profile not updated: %+v", updated)
	}
	if updated.Role != domain.RoleUser || updated.Username != "alice" {
		t.Fatalf("profile update must not touch username or role: %+v", updated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("better-pass")); err != nil {
		t.Fatalf("password not re-hashed: %v", err)
	}

	last := f.events.events[len(f.events.events)-1]
	if last.Action != domain.AuditProfileUpdated {
		t.Fatalf("expected %s event, got %s", domain.AuditProfileUpdated, last.Action)
	}
}

func seedListUser(t *testing.T, repo *stubUserRepo, i int) {
	t.Helper()
	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New(),
		Username:     "user" + string(rune('a'+i)),
		PasswordHash: "x",
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
