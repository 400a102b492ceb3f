package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/educompanion/internal/models"
)

// FileRepo stores user documents in the user_files table.
type FileRepo struct {
	DB *sql.DB
}

func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{DB: db}
}

// EnsureExists inserts the document with content unless one already exists.
func (r *FileRepo) EnsureExists(ctx context.Context, username, content string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_files (username, content, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (username) DO NOTHING
	`, username, content, now)
	return err
}

// Get returns the document for username or ErrNotFound.
func (r *FileRepo) Get(ctx context.Context, username string) (*models.UserFile, error) {
	f := &models.UserFile{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT username, content, created_at, updated_at
		FROM user_files
		WHERE username = $1
	`, username).Scan(&f.Username, &f.Content, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Upsert replaces the content in a single statement, creating the row if needed.
func (r *FileRepo) Upsert(ctx context.Context, username, content string, now time.Time) (*models.UserFile, error) {
	f := &models.UserFile{}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO user_files (username, content, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (username) DO UPDATE
		SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
		RETURNING username, content, created_at, updated_at
	`, username, content, now).Scan(&f.Username, &f.Content, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}
