package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/lib/pq"
)

// Constraint names from migrations/000001_init.up.sql.
const (
	usersPkeyConstraint     = "users_pkey"
	usersEmailKeyConstraint = "users_email_key"
	uniqueViolation         = "23505"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, grade, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Grade, user.CreatedAt)
	if err != nil {
		return nil, translateUnique(err)
	}

	return user, nil
}

// translateUnique maps a unique violation to the matching duplicate error.
func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case usersPkeyConstraint:
			return ErrDuplicateUsername
		case usersEmailKeyConstraint:
			return ErrDuplicateEmail
		}
	}
	return err
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT username, email, password_hash, grade, created_at
		FROM users
		WHERE username = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.Email, &user.PasswordHash, &user.Grade, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

// ==========================
// Email Exists
// ==========================
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// ==========================
// Get Progress
// ==========================
func (r *UserRepo) GetProgress(ctx context.Context, username string) (models.Progress, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT progress FROM users WHERE username = $1`, username).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	progress := models.Progress{}
	if len(raw) == 0 {
		return progress, nil
	}
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	if progress == nil {
		progress = models.Progress{}
	}
	return progress, nil
}

// ==========================
// Set Progress
// ==========================
func (r *UserRepo) SetProgress(ctx context.Context, username string, progress models.Progress) error {
	raw, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	// Sent as text: lib/pq would encode []byte as bytea.
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET progress = $1::jsonb WHERE username = $2`, string(raw), username)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
