// Package service implements registration and login, the per-user document,
// the progress object, and the question relay on top of the repo stores.
// Every operation that acts on a user's data takes the caller's session and
// refuses to run unless it is bound to that user.
package service

import (
	"errors"
	"fmt"

	"github.com/crucial707/educompanion/internal/session"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAuthenticated   = session.ErrNotAuthenticated
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyQuestion      = errors.New("no question provided")
	ErrUpstreamFailure    = errors.New("upstream model failure")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInternal           = errors.New("internal error")
)

// UpstreamError carries the generative model's failure. It matches both
// ErrUpstreamFailure and the cause under errors.Is.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream model failure: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamFailure, e.Err}
}

func internalErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

// authorize requires sess to be bound to username.
func authorize(sess *session.Session, username string) error {
	current, err := sess.CurrentUser()
	if err != nil || current != username {
		return ErrNotAuthenticated
	}
	return nil
}
