package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
)

const issuer = "educompanion"

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager issues, loads and clears sessions.
type Manager struct {
	store  repo.SessionStore
	secret []byte
	opts   Options
	now    func() time.Time
}

// NewManager returns a Manager signing cookies with secret.
func NewManager(store repo.SessionStore, secret string, opts Options) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		opts:   opts,
		now:    time.Now,
	}
}

// Load resolves the request cookie to a session. Missing, forged, expired or
// unknown cookies give an anonymous session and a nil error; only store
// failures are returned.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return Anonymous(), nil
	}

	id, err := m.parse(cookie.Value)
	if err != nil {
		return Anonymous(), nil
	}

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Anonymous(), nil
		}
		return Anonymous(), fmt.Errorf("load session: %w", err)
	}
	if rec.Expired(m.now()) {
		return Anonymous(), nil
	}

	return &Session{id: rec.ID, username: rec.Username}, nil
}

// Establish binds s to username. A new record id is always issued and any
// record s was previously bound to is deleted.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, s *Session, username string) error {
	if s.id != "" {
		if err := m.store.Delete(ctx, s.id); err != nil {
			return fmt.Errorf("drop previous session: %w", err)
		}
		s.id, s.username = "", ""
	}

	now := m.now()
	rec := &models.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	token, err := m.sign(rec)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  rec.ExpiresAt,
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.id, s.username = rec.ID, rec.Username
	return nil
}

// Clear unbinds s and expires the cookie. The cookie is cleared even when
// deleting the server record fails; that error is returned for logging.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, s *Session) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	id := s.id
	s.id, s.username = "", ""
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// End logs out whatever session the request cookie names without loading it
// first, so it works while the store is failing. The cookie is always
// expired; a store error from deleting the record is returned for logging.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s := Anonymous()
	if cookie, err := r.Cookie(m.opts.CookieName); err == nil && cookie.Value != "" {
		if id, err := m.parse(cookie.Value); err == nil {
			s.id = id
		}
	}
	return m.Clear(ctx, w, s)
}

// PurgeExpired deletes expired session records.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

func (m *Manager) sign(rec *models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        rec.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(rec.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("session token without id")
	}
	return claims.ID, nil
}
