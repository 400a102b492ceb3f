package repo

import (
	"context"
	"errors"
	"time"

	"github.com/crucial707/educompanion/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

// UserStore persists user records. Create must enforce username and email
// uniqueness atomically and report ErrDuplicateUsername / ErrDuplicateEmail.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetProgress(ctx context.Context, username string) (models.Progress, error)
	SetProgress(ctx context.Context, username string, progress models.Progress) error
}

// FileStore persists one document per username.
type FileStore interface {
	EnsureExists(ctx context.Context, username, content string, now time.Time) error
	Get(ctx context.Context, username string) (*models.UserFile, error)
	Upsert(ctx context.Context, username, content string, now time.Time) (*models.UserFile, error)
}

// SessionStore persists server-side sessions keyed by id.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores groups the repositories of one backend.
type Stores struct {
	Users    UserStore
	Files    FileStore
	Sessions SessionStore
	Pinger   Pinger
}
