// Package memrepo keeps users, documents and sessions in process memory.
// Every method holds one mutex, so uniqueness checks and upserts are atomic.
package memrepo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]*models.User
	emails   map[string]string
	files    map[string]*models.UserFile
	sessions map[string]*models.Session
}

func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		emails:   make(map[string]string),
		files:    make(map[string]*models.UserFile),
		sessions: make(map[string]*models.Session),
	}
}

// Stores exposes s through every repo contract.
func (s *Store) Stores() *repo.Stores {
	return &repo.Stores{
		Users:    userStore{s},
		Files:    fileStore{s},
		Sessions: sessionStore{s},
		Pinger:   s,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// ---- users ----

type userStore struct{ s *Store }

func (u userStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[user.Username]; ok {
		return nil, repo.ErrDuplicateUsername
	}
	if _, ok := u.s.emails[user.Email]; ok {
		return nil, repo.ErrDuplicateEmail
	}

	stored := *user
	stored.PasswordHash = append([]byte(nil), user.PasswordHash...)
	u.s.users[user.Username] = &stored
	u.s.emails[user.Email] = user.Username
	return user, nil
}

func (u userStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (u userStore) EmailExists(_ context.Context, email string) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	_, ok := u.s.emails[email]
	return ok, nil
}

func (u userStore) GetProgress(_ context.Context, username string) (models.Progress, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if user.Progress == nil {
		return models.Progress{}, nil
	}
	return cloneProgress(user.Progress)
}

func (u userStore) SetProgress(_ context.Context, username string, progress models.Progress) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[username]
	if !ok {
		return repo.ErrNotFound
	}
	cp, err := cloneProgress(progress)
	if err != nil {
		return err
	}
	user.Progress = cp
	return nil
}

// cloneProgress deep-copies through JSON so callers never share nested maps
// with the store, matching what a database round trip returns.
func cloneProgress(p models.Progress) (models.Progress, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	out := models.Progress{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = models.Progress{}
	}
	return out, nil
}

// ---- files ----

type fileStore struct{ s *Store }

func (f fileStore) EnsureExists(_ context.Context, username, content string, now time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if _, ok := f.s.files[username]; ok {
		return nil
	}
	f.s.files[username] = &models.UserFile{
		Username:  username,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (f fileStore) Get(_ context.Context, username string) (*models.UserFile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	file, ok := f.s.files[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := *file
	return &out, nil
}

func (f fileStore) Upsert(_ context.Context, username, content string, now time.Time) (*models.UserFile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	file, ok := f.s.files[username]
	if !ok {
		file = &models.UserFile{Username: username, CreatedAt: now}
		f.s.files[username] = file
	}
	file.Content = content
	file.UpdatedAt = now
	out := *file
	return &out, nil
}

// ---- sessions ----

type sessionStore struct{ s *Store }

func (ss sessionStore) Create(_ context.Context, session *models.Session) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	cp := *session
	ss.s.sessions[session.ID] = &cp
	return nil
}

func (ss sessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	session, ok := ss.s.sessions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := *session
	return &out, nil
}

func (ss sessionStore) Delete(_ context.Context, id string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	delete(ss.s.sessions, id)
	return nil
}

func (ss sessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	var n int64
	for id, session := range ss.s.sessions {
		if session.Expired(now) {
			delete(ss.s.sessions, id)
			n++
		}
	}
	return n, nil
}
