package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/metrics"
	"github.com/crucial707/educompanion/internal/service"
	"github.com/crucial707/educompanion/internal/session"
)

// ==========================
// AskHandler
// ==========================
type AskHandler struct {
	Questions *service.QuestionService
	Logger    *zerolog.Logger
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Question string `json:"question"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	answer, err := h.Questions.Ask(r.Context(), session.FromContext(r.Context()), input.Question)
	if err != nil {
		metrics.IncQuestions(questionOutcome(err))
		serviceError(w, r, h.Logger, err)
		return
	}

	metrics.IncQuestions("answered")
	JSON(w, http.StatusOK, map[string]any{"answer": answer})
}

func questionOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return "unauthenticated"
	case errors.Is(err, service.ErrEmptyQuestion):
		return "empty"
	case errors.Is(err, service.ErrUpstreamFailure):
		return "upstream_error"
	default:
		return "error"
	}
}
