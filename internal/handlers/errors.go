package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/service"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

const (
	msgInvalidJSON      = "invalid json"
	msgBodyTooLarge     = "request body too large"
	msgNotLoggedIn      = "Not logged in"
	msgInvalidRequest   = "invalid request"
	msgInvalidLogin     = "Invalid username or password"
	msgUsernameTaken    = "Username already exists"
	msgEmailTaken       = "Email already exists"
	msgUserNotFound     = "User not found"
	msgNoQuestion       = "No question provided"
	msgPasswordTooLong  = "Password must be at most 72 bytes"
	msgContentRequired  = "content is required"
	msgProgressRequired = "progress must be a JSON object"
)

// JSON writes payload with "success": true merged in.
func JSON(w http.ResponseWriter, status int, payload map[string]any) {
	out := map[string]any{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

// JSONError sends {"success": false, "message": message}.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// JSONValidationError sends a JSON error response with "message" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]any{"success": false, "message": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	_ = json.NewEncoder(w).Encode(out)
}

// decodeJSON reads the request body into v and answers 400 (or 413) itself
// when it cannot. It reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			JSONError(w, msgBodyTooLarge, http.StatusRequestEntityTooLarge)
			return false
		}
		JSONError(w, msgInvalidJSON, http.StatusBadRequest)
		return false
	}
	return true
}

// serviceError maps a service error to a status and message. Unknown errors
// are logged and reported as 500 without detail.
func serviceError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		JSONError(w, msgNotLoggedIn, http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidCredentials):
		JSONError(w, msgInvalidLogin, http.StatusUnauthorized)
	case errors.Is(err, service.ErrDuplicateUsername):
		JSONError(w, msgUsernameTaken, http.StatusBadRequest)
	case errors.Is(err, service.ErrDuplicateEmail):
		JSONError(w, msgEmailTaken, http.StatusBadRequest)
	case errors.Is(err, service.ErrPasswordTooLong):
		JSONError(w, msgPasswordTooLong, http.StatusBadRequest)
	case errors.Is(err, service.ErrEmptyQuestion):
		JSONError(w, msgNoQuestion, http.StatusBadRequest)
	case errors.Is(err, service.ErrUserNotFound):
		JSONError(w, msgUserNotFound, http.StatusNotFound)
	case errors.Is(err, service.ErrUpstreamFailure):
		logger.Warn().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("model request failed")
		JSONError(w, err.Error(), http.StatusInternalServerError)
	default:
		logger.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}
