package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crucial707/educompanion/internal/auth"
	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
)

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Username string
	Password string
	Email    string
	Grade    string
}

// CredentialService registers users and checks their passwords.
type CredentialService struct {
	users  repo.UserStore
	docs   *DocumentService
	hasher auth.Hasher
	dummy  []byte
	now    func() time.Time
}

// NewCredentialService precomputes a throwaway hash that unknown usernames
// are verified against, so a miss costs the same as a wrong password.
func NewCredentialService(users repo.UserStore, docs *DocumentService, hasher auth.Hasher) (*CredentialService, error) {
	dummy, err := hasher.Hash("educompanion-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &CredentialService{
		users:  users,
		docs:   docs,
		hasher: hasher,
		dummy:  dummy,
		now:    time.Now,
	}, nil
}

// Register stores a new user and its default document. The username check
// runs before the email check; the store's unique constraints back both
// under concurrent registrations.
func (s *CredentialService) Register(ctx context.Context, params RegisterParams) error {
	if _, err := s.users.GetByUsername(ctx, params.Username); err == nil {
		return ErrDuplicateUsername
	} else if !errors.Is(err, repo.ErrNotFound) {
		return internalErr("lookup username", err)
	}

	taken, err := s.users.EmailExists(ctx, params.Email)
	if err != nil {
		return internalErr("lookup email", err)
	}
	if taken {
		return ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return ErrPasswordTooLong
		}
		return internalErr("hash password", err)
	}

	grade := params.Grade
	if grade == "" {
		grade = models.DefaultGrade
	}

	_, err = s.users.Create(ctx, &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		Grade:        grade,
		CreatedAt:    s.now(),
	})
	switch {
	case errors.Is(err, repo.ErrDuplicateUsername):
		return ErrDuplicateUsername
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case err != nil:
		return internalErr("create user", err)
	}

	return s.docs.EnsureExists(ctx, params.Username)
}

// VerifyCredentials checks password against the stored hash and makes sure
// the user's document exists.
func (s *CredentialService) VerifyCredentials(ctx context.Context, username, password string) (*models.PublicUser, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			_, _ = s.hasher.Verify(s.dummy, password)
			return nil, ErrInvalidCredentials
		}
		return nil, internalErr("lookup user", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, internalErr("verify password", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := s.docs.EnsureExists(ctx, username); err != nil {
		return nil, err
	}

	public := user.Public()
	return &public, nil
}
