package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/educompanion/internal/models"
)

// SessionRepo stores server-side sessions in the sessions table.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.Username, s.CreatedAt, s.ExpiresAt,
	)
	return err
}

// Get returns the session with id or ErrNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, created_at, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.Username, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Delete removes the session; a missing row is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes sessions whose expiry is not after now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DBPinger adapts *sql.DB to Pinger.
type DBPinger struct {
	DB *sql.DB
}

func (p DBPinger) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// NewPostgresStores wires the Postgres repositories around db.
func NewPostgresStores(db *sql.DB) *Stores {
	return &Stores{
		Users:    NewUserRepo(db),
		Files:    NewFileRepo(db),
		Sessions: NewSessionRepo(db),
		Pinger:   DBPinger{DB: db},
	}
}
