package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
)

const uniqueViolation = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

// Credentials carries the password hash alongside the user row; it never
// leaves the auth path.
type Credentials struct {
	User         model.User
	PasswordHash string
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, first_name, last_name, role, status, is_verified, profile_completed, last_login_at, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, email, passwordHash, firstName, lastName string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, first_name, last_name, role, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'CLIENT', 'ACTIVE', NOW(), NOW())
RETURNING `+userColumns, email, passwordHash, firstName, lastName)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, userID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetCredentialsByEmail(ctx context.Context, email string) (Credentials, error) {
	if r.pool == nil {
		return Credentials{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`, password_hash
FROM users
WHERE email = $1
`, email)

	var (
		user model.User
		hash string
	)
	if err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role,
		&user.Status, &user.IsVerified, &user.ProfileCompleted,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &hash,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credentials{}, ErrUserNotFound
		}
		return Credentials{}, fmt.Errorf("get credentials by email: %w", err)
	}

	return Credentials{User: user, PasswordHash: hash}, nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE users
SET last_login_at = $2, updated_at = NOW()
WHERE id = $1
`, userID, at.UTC()); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}

	return nil
}

// SetProfileCompleted runs inside the caller's transaction so the flag
// flips only when the profile upsert commits.
func (r *UserRepo) SetProfileCompleted(ctx context.Context, tx pgx.Tx, userID int64, completed bool) error {
	tag, err := tx.Exec(ctx, `
UPDATE users
SET profile_completed = $2, updated_at = NOW()
WHERE id = $1
`, userID, completed)
	if err != nil {
		return fmt.Errorf("set profile completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) SetStatus(ctx context.Context, userID int64, status enums.AccountStatus) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET status = $2, updated_at = NOW()
WHERE id = $1
`, userID, string(status))
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *UserRepo) SetVerified(ctx context.Context, userID int64, verified bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET is_verified = $2, updated_at = NOW()
WHERE id = $1
`, userID, verified)
	if err != nil {
		return fmt.Errorf("set user verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role,
		&user.Status, &user.IsVerified, &user.ProfileCompleted,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}
