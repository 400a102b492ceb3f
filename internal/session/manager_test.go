package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
	"github.com/crucial707/educompanion/internal/repo/memrepo"
)

const cookieName = "edu_test"

func newTestManager(t *testing.T) (*Manager, repo.SessionStore, *time.Time) {
	t.Helper()
	store := memrepo.New().Stores().Sessions
	m := NewManager(store, "test-secret", Options{CookieName: cookieName, TTL: time.Hour})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, store, &now
}

// requestWith returns a request carrying the cookies set on rr.
func requestWith(rr *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestManager_EstablishThenLoad(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	s := Anonymous()
	rr := httptest.NewRecorder()
	require.NoError(t, m.Establish(ctx, rr, s, "alice"))

	user, err := s.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "alice", user)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotContains(t, cookies[0].Value, "alice")

	loaded, err := m.Load(ctx, requestWith(rr))
	require.NoError(t, err)
	user, err = loaded.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, s.ID(), loaded.ID())
}

func TestManager_LoadAnonymous(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	s, err := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	_, err = s.CurrentUser()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestManager_LoadRejectsForgedCookie(t *testing.T) {
	m, store, now := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Session{
		ID: "known", Username: "mallory", CreatedAt: *now, ExpiresAt: now.Add(time.Hour),
	}))

	other := NewManager(store, "another-secret", Options{CookieName: cookieName, TTL: time.Hour})
	forged, err := other.sign(&models.Session{ID: "known", CreatedAt: *now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	for name, value := range map[string]string{"wrong secret": forged, "garbage": "not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: value})

		s, err := m.Load(ctx, req)
		require.NoError(t, err, name)
		assert.False(t, s.Authenticated(), name)
	}
}

func TestManager_LoadExpired(t *testing.T) {
	m, _, now := newTestManager(t)
	ctx := context.Background()

	rr := httptest.NewRecorder()
	require.NoError(t, m.Establish(ctx, rr, Anonymous(), "alice"))

	*now = now.Add(2 * time.Hour)
	s, err := m.Load(ctx, requestWith(rr))
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestManager_LoadStoreFailure(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	rr := httptest.NewRecorder()
	require.NoError(t, m.Establish(ctx, rr, Anonymous(), "alice"))

	m.store = failingStore{err: errors.New("connection refused")}
	s, err := m.Load(ctx, requestWith(rr))
	require.Error(t, err)
	assert.False(t, s.Authenticated())
}

func TestManager_EstablishRotatesID(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s := Anonymous()
	require.NoError(t, m.Establish(ctx, httptest.NewRecorder(), s, "alice"))
	first := s.ID()

	require.NoError(t, m.Establish(ctx, httptest.NewRecorder(), s, "bob"))
	assert.NotEqual(t, first, s.ID())

	user, _ := s.CurrentUser()
	assert.Equal(t, "bob", user)

	_, err := store.Get(ctx, first)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestManager_Clear(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s := Anonymous()
	establish := httptest.NewRecorder()
	require.NoError(t, m.Establish(ctx, establish, s, "alice"))
	id := s.ID()

	rr := httptest.NewRecorder()
	require.NoError(t, m.Clear(ctx, rr, s))
	assert.False(t, s.Authenticated())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// The old cookie no longer resolves.
	loaded, err := m.Load(ctx, requestWith(establish))
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated())

	// Clearing an anonymous session is a no-op.
	require.NoError(t, m.Clear(ctx, httptest.NewRecorder(), Anonymous()))
}

func TestManager_PurgeExpired(t *testing.T) {
	m, _, now := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Establish(ctx, httptest.NewRecorder(), Anonymous(), "alice"))
	require.NoError(t, m.Establish(ctx, httptest.NewRecorder(), Anonymous(), "bob"))

	n, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	*now = now.Add(time.Hour)
	n, err = m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestFromContext(t *testing.T) {
	assert.False(t, FromContext(context.Background()).Authenticated())

	s := &Session{id: "1", username: "alice"}
	got := FromContext(NewContext(context.Background(), s))
	assert.Same(t, s, got)
}

type failingStore struct{ err error }

func (f failingStore) Create(context.Context, *models.Session) error { return f.err }
func (f failingStore) Get(context.Context, string) (*models.Session, error) {
	return nil, f.err
}
func (f failingStore) Delete(context.Context, string) error { return f.err }
func (f failingStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, f.err
}

func TestManager_End(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s := Anonymous()
	establish := httptest.NewRecorder()
	require.NoError(t, m.Establish(ctx, establish, s, "alice"))
	id := s.ID()

	rr := httptest.NewRecorder()
	require.NoError(t, m.End(ctx, rr, requestWith(establish)))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// Without a cookie, or with a garbage one, the cookie is still expired.
	for name, req := range map[string]*http.Request{
		"no cookie": httptest.NewRequest(http.MethodPost, "/", nil),
		"garbage":   garbageCookieRequest(),
	} {
		rr := httptest.NewRecorder()
		require.NoError(t, m.End(ctx, rr, req), name)
		require.Len(t, rr.Result().Cookies(), 1, name)
	}
}

func TestManager_EndStoreFailure(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	establish := httptest.NewRecorder()
	require.NoError(t, m.Establish(ctx, establish, Anonymous(), "alice"))

	m.store = failingStore{err: errors.New("connection refused")}
	rr := httptest.NewRecorder()
	err := m.End(ctx, rr, requestWith(establish))
	require.Error(t, err)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func garbageCookieRequest() *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookieName, Value: "not-a-jwt"})
	return r
}
