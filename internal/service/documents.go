package service

import (
	"context"
	"time"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/repo"
	"github.com/crucial707/educompanion/internal/session"
)

// DefaultContent is the content of a freshly created document.
const DefaultContent = "Welcome to EduCompanion!"

// DocumentService owns the single text document of each user.
type DocumentService struct {
	files repo.FileStore
	now   func() time.Time
}

func NewDocumentService(files repo.FileStore) *DocumentService {
	return &DocumentService{files: files, now: time.Now}
}

// EnsureExists creates the default document for username if it has none.
func (s *DocumentService) EnsureExists(ctx context.Context, username string) error {
	if err := s.files.EnsureExists(ctx, username, DefaultContent, s.now()); err != nil {
		return internalErr("ensure document", err)
	}
	return nil
}

// Read returns username's document, creating it first if needed.
func (s *DocumentService) Read(ctx context.Context, sess *session.Session, username string) (*models.UserFile, error) {
	if err := authorize(sess, username); err != nil {
		return nil, err
	}
	if err := s.EnsureExists(ctx, username); err != nil {
		return nil, err
	}

	f, err := s.files.Get(ctx, username)
	if err != nil {
		return nil, internalErr("read document", err)
	}
	return f, nil
}

// Write replaces the content of username's document; last writer wins.
func (s *DocumentService) Write(ctx context.Context, sess *session.Session, username, content string) (*models.UserFile, error) {
	if err := authorize(sess, username); err != nil {
		return nil, err
	}

	f, err := s.files.Upsert(ctx, username, content, s.now())
	if err != nil {
		return nil, internalErr("write document", err)
	}
	return f, nil
}
