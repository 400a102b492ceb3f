package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/educompanion/internal/auth"
	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
	"github.com/crucial707/educompanion/internal/repo/memrepo"
	"github.com/crucial707/educompanion/internal/session"
)

type fixture struct {
	stores   *repo.Stores
	sessions *session.Manager
	creds    *CredentialService
	docs     *DocumentService
	progress *ProgressService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := memrepo.New().Stores()

	hasher, err := auth.NewHasher(auth.SchemeBcrypt)
	require.NoError(t, err)

	docs := NewDocumentService(stores.Files)
	creds, err := NewCredentialService(stores.Users, docs, hasher)
	require.NoError(t, err)

	return &fixture{
		stores:   stores,
		sessions: session.NewManager(stores.Sessions, "test-secret", session.Options{CookieName: "s", TTL: time.Hour}),
		creds:    creds,
		docs:     docs,
		progress: NewProgressService(stores.Users),
	}
}

func (f *fixture) login(t *testing.T, username string) *session.Session {
	t.Helper()
	s := session.Anonymous()
	require.NoError(t, f.sessions.Establish(context.Background(), httptest.NewRecorder(), s, username))
	return s
}

func (f *fixture) register(t *testing.T, username, email string) {
	t.Helper()
	require.NoError(t, f.creds.Register(context.Background(), RegisterParams{
		Username: username, Password: "pw-" + username, Email: email, Grade: "10th",
	}))
}

// ====================
// Credentials
// ====================

func TestRegister_CreatesUserAndDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")

	u, err := f.stores.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "10th", u.Grade)
	assert.NotContains(t, string(u.PasswordHash), "pw-alice")

	doc, err := f.stores.Files.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultContent, doc.Content)
}

func TestRegister_DefaultGrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.creds.Register(ctx, RegisterParams{Username: "bob", Password: "pw", Email: "b@x.com"}))

	u, err := f.stores.Users.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGrade, u.Grade)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")

	err := f.creds.Register(ctx, RegisterParams{Username: "alice", Password: "x", Email: "other@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	err = f.creds.Register(ctx, RegisterParams{Username: "carol", Password: "x", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Username is checked first when both collide.
	err = f.creds.Register(ctx, RegisterParams{Username: "alice", Password: "x", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// The failed attempts left the original record alone.
	_, err = f.creds.VerifyCredentials(ctx, "alice", "pw-alice")
	assert.NoError(t, err)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.creds.Register(ctx, RegisterParams{
				Username: "race", Password: "pw", Email: string(rune('a'+i)) + "@x.com",
			})
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	}
	assert.Equal(t, 1, ok)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	f := newFixture(t)
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	err := f.creds.Register(context.Background(), RegisterParams{Username: "bob", Password: string(long), Email: "b@x.com"})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = f.stores.Users.GetByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestVerifyCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")

	u, err := f.creds.VerifyCredentials(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	assert.Equal(t, models.PublicUser{Username: "alice", Email: "a@x.com", Grade: "10th"}, *u)

	_, err = f.creds.VerifyCredentials(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.creds.VerifyCredentials(ctx, "nobody", "pw-alice")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyCredentials_RecreatesMissingDocument(t *testing.T) {
	stores := memrepo.New().Stores()
	hasher, err := auth.NewHasher(auth.SchemeArgon2id)
	require.NoError(t, err)
	docs := NewDocumentService(stores.Files)
	creds, err := NewCredentialService(stores.Users, docs, hasher)
	require.NoError(t, err)
	ctx := context.Background()

	// A user whose document was never created.
	hash, err := hasher.Hash("pw")
	require.NoError(t, err)
	_, err = stores.Users.Create(ctx, &models.User{Username: "old", Email: "o@x.com", PasswordHash: hash, Grade: "9th"})
	require.NoError(t, err)

	_, err = creds.VerifyCredentials(ctx, "old", "pw")
	require.NoError(t, err)

	doc, err := stores.Files.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, DefaultContent, doc.Content)
}

// ====================
// Documents
// ====================

func TestDocuments_ReadWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")
	s := f.login(t, "alice")

	doc, err := f.docs.Read(ctx, s, "alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultContent, doc.Content)

	written, err := f.docs.Write(ctx, s, "alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", written.Content)
	assert.False(t, written.UpdatedAt.Before(doc.UpdatedAt))

	doc, err = f.docs.Read(ctx, s, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hi", doc.Content)

	_, err = f.docs.Write(ctx, s, "alice", "")
	require.NoError(t, err)
	doc, err = f.docs.Read(ctx, s, "alice")
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
}

func TestDocuments_RequireOwnSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")
	f.register(t, "bob", "b@x.com")
	bob := f.login(t, "bob")

	_, err := f.docs.Read(ctx, session.Anonymous(), "alice")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.docs.Read(ctx, bob, "alice")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.docs.Write(ctx, bob, "alice", "pwned")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	doc, err := f.stores.Files.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultContent, doc.Content)
}

// ====================
// Progress
// ====================

func TestProgress_ReadWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")
	s := f.login(t, "alice")

	p, err := f.progress.Read(ctx, s, "alice")
	require.NoError(t, err)
	assert.Empty(t, p)

	want := models.Progress{"math": map[string]any{"done": float64(3)}, "streak": float64(2)}
	require.NoError(t, f.progress.Write(ctx, s, "alice", want))

	p, err = f.progress.Read(ctx, s, "alice")
	require.NoError(t, err)
	assert.Equal(t, want, p)

	require.NoError(t, f.progress.Write(ctx, s, "alice", models.Progress{"x": float64(1)}))
	p, err = f.progress.Read(ctx, s, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.Progress{"x": float64(1)}, p)
}

func TestProgress_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")

	_, err := f.progress.Read(ctx, session.Anonymous(), "alice")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = f.progress.Write(ctx, f.login(t, "bob"), "alice", models.Progress{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// A session outliving its user.
	ghost := f.login(t, "ghost")
	_, err = f.progress.Read(ctx, ghost, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	err = f.progress.Write(ctx, ghost, "ghost", models.Progress{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ====================
// Questions
// ====================

type fakeAsker struct {
	calls    int
	answer   string
	err      error
	deadline bool
}

func (a *fakeAsker) Ask(ctx context.Context, q string) (string, error) {
	a.calls++
	_, a.deadline = ctx.Deadline()
	return a.answer, a.err
}

func TestQuestions_Ask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := &fakeAsker{answer: "Photosynthesis turns light into sugar."}
	svc := NewQuestionService(asker, time.Second)

	answer, err := svc.Ask(ctx, f.login(t, "alice"), "What is photosynthesis?")
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis turns light into sugar.", answer)
	assert.True(t, asker.deadline)
	assert.Equal(t, 1, asker.calls)
}

func TestQuestions_RejectsWithoutCallingModel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := &fakeAsker{answer: "unused"}
	svc := NewQuestionService(asker, 0)

	_, err := svc.Ask(ctx, session.Anonymous(), "hello?")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	s := f.login(t, "alice")
	for _, q := range []string{"", "   ", "\n\t"} {
		_, err = svc.Ask(ctx, s, q)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}
	assert.Zero(t, asker.calls)
}

func TestQuestions_UpstreamFailure(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("quota exceeded")
	svc := NewQuestionService(&fakeAsker{err: cause}, 0)

	_, err := svc.Ask(context.Background(), f.login(t, "alice"), "why?")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.ErrorIs(t, err, cause)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, cause, upstream.Err)
}
