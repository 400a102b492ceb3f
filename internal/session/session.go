// Package session binds HTTP requests to a logged-in username.
//
// The server keeps one record per login (id, username, expiry) in a
// repo.SessionStore. The browser holds a cookie whose value is an HS256 JWT
// naming only the record id, so a forged or altered cookie never reaches the
// store. A Session value is loaded once per request by middleware and
// threaded through the request context.
package session

import (
	"context"
	"errors"
)

// ErrNotAuthenticated is returned by CurrentUser on an anonymous session.
var ErrNotAuthenticated = errors.New("not logged in")

// Session is the per-request view of the caller's identity: either
// anonymous or authenticated as one username.
type Session struct {
	id       string
	username string
}

// Anonymous returns an unbound session.
func Anonymous() *Session {
	return &Session{}
}

// CurrentUser returns the bound username or ErrNotAuthenticated.
func (s *Session) CurrentUser() (string, error) {
	if s == nil || s.username == "" {
		return "", ErrNotAuthenticated
	}
	return s.username, nil
}

// Authenticated reports whether a username is bound.
func (s *Session) Authenticated() bool {
	return s != nil && s.username != ""
}

// ID returns the server-side record id, empty when anonymous.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext, or an anonymous one.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return Anonymous()
}
