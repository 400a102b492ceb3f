package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/models"
	"github.com/crucial707/educompanion/internal/service"
	"github.com/crucial707/educompanion/internal/session"
)

// ==========================
// UserHandler
// ==========================

// UserHandler serves the logged-in user's document and progress. The user is
// always taken from the session, never from the request.
type UserHandler struct {
	Documents *service.DocumentService
	Progress  *service.ProgressService
	Logger    *zerolog.Logger
}

// currentUser answers 401 itself when the request has no bound user.
func currentUser(w http.ResponseWriter, r *http.Request) (*session.Session, string, bool) {
	s := session.FromContext(r.Context())
	username, err := s.CurrentUser()
	if err != nil {
		JSONError(w, msgNotLoggedIn, http.StatusUnauthorized)
		return nil, "", false
	}
	return s, username, true
}

// ==========================
// Get File
// ==========================
func (h *UserHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	s, username, ok := currentUser(w, r)
	if !ok {
		return
	}

	f, err := h.Documents.Read(r.Context(), s, username)
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{"file": f})
}

// ==========================
// Update File
// ==========================
func (h *UserHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	s, username, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Content *string `json:"content"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Content == nil {
		JSONValidationError(w, msgContentRequired, map[string]string{"content": msgContentRequired}, http.StatusBadRequest)
		return
	}

	if _, err := h.Documents.Write(r.Context(), s, username, *input.Content); err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{"message": "File updated successfully"})
}

// ==========================
// Get Progress
// ==========================
func (h *UserHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	s, username, ok := currentUser(w, r)
	if !ok {
		return
	}

	progress, err := h.Progress.Read(r.Context(), s, username)
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{"progress": progress})
}

// ==========================
// Update Progress
// ==========================
func (h *UserHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	s, username, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Progress *models.Progress `json:"progress"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Progress == nil || *input.Progress == nil {
		JSONValidationError(w, msgProgressRequired, map[string]string{"progress": msgProgressRequired}, http.StatusBadRequest)
		return
	}

	if err := h.Progress.Write(r.Context(), s, username, *input.Progress); err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}

	JSON(w, http.StatusOK, map[string]any{"message": "Progress updated successfully"})
}
