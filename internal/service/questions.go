package service

import (
	"context"
	"strings"
	"time"

	"github.com/crucial707/educompanion/internal/session"
)

// Asker answers a plain-text question. internal/relay provides the Gemini
// implementation.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// QuestionService forwards questions from logged-in users to an Asker.
type QuestionService struct {
	asker   Asker
	timeout time.Duration
}

// NewQuestionService bounds each upstream call by timeout; zero means no bound.
func NewQuestionService(asker Asker, timeout time.Duration) *QuestionService {
	return &QuestionService{asker: asker, timeout: timeout}
}

// Ask returns the model's answer verbatim. Blank questions are rejected
// before the model is contacted. Upstream errors are not retried.
func (s *QuestionService) Ask(ctx context.Context, sess *session.Session, question string) (string, error) {
	if !sess.Authenticated() {
		return "", ErrNotAuthenticated
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	answer, err := s.asker.Ask(ctx, question)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	return answer, nil
}
