package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// UserRepository persists user accounts in PostgreSQL. The pool is owned by
// the caller and is never closed here.
//
// Uniqueness of username and email is enforced by the database; a unique
// violation on insert or update surfaces as domain.ErrUserExists.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository builds a repository on top of an established pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Optional columns are stored as NULL when empty and folded back to the
// empty string on read.
const userColumns = `id, username, COALESCE(email, ''), password_hash,
	COALESCE(fullname, ''), COALESCE(phone, ''), COALESCE(gender, ''),
	COALESCE(address, ''), role, is_active, created_at, updated_at`

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (
		     id, username, email, password_hash, fullname, phone, gender,
		     address, role, is_active, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID,
		user.Username,
		nullIfEmpty(user.Email),
		user.PasswordHash,
		nullIfEmpty(user.FullName),
		nullIfEmpty(user.Phone),
		nullIfEmpty(user.Gender),
		nullIfEmpty(user.Address),
		string(user.Role),
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindByID fetches a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	var u domain.User
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

// FindByUsername fetches a user by its unique username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	var u domain.User
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &u, nil
}

// List returns one page of users ordered by creation time plus the total count.
func (r *UserRepository) List(ctx context.Context, page, limit int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Update rewrites every mutable column of an existing user row.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		    SET username = $2, email = $3, password_hash = $4, fullname = $5,
		        phone = $6, gender = $7, address = $8, role = $9,
		        is_active = $10, updated_at = $11
		  WHERE id = $1`,
		user.ID,
		user.Username,
		nullIfEmpty(user.Email),
		user.PasswordHash,
		nullIfEmpty(user.FullName),
		nullIfEmpty(user.Phone),
		nullIfEmpty(user.Gender),
		nullIfEmpty(user.Address),
		string(user.Role),
		user.Active,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// Delete removes a user row permanently.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Phone,
		&u.Gender,
		&u.Address,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
