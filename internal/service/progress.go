package service

import (
	"context"
	"errors"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
	"github.com/crucial707/educompanion/internal/session"
)

// ProgressService reads and replaces the progress object on a user record.
type ProgressService struct {
	users repo.UserStore
}

func NewProgressService(users repo.UserStore) *ProgressService {
	return &ProgressService{users: users}
}

// Read returns the stored progress, or an empty object if none was written.
func (s *ProgressService) Read(ctx context.Context, sess *session.Session, username string) (models.Progress, error) {
	if err := authorize(sess, username); err != nil {
		return nil, err
	}

	progress, err := s.users.GetProgress(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internalErr("read progress", err)
	}
	if progress == nil {
		progress = models.Progress{}
	}
	return progress, nil
}

// Write replaces the progress object wholesale.
func (s *ProgressService) Write(ctx context.Context, sess *session.Session, username string, progress models.Progress) error {
	if err := authorize(sess, username); err != nil {
		return err
	}

	if err := s.users.SetProgress(ctx, username, progress); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return internalErr("write progress", err)
	}
	return nil
}
