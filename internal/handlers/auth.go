package handlers

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/metrics"
	"github.com/crucial707/educompanion/internal/service"
	"github.com/crucial707/educompanion/internal/session"
	"github.com/crucial707/educompanion/internal/validation"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Credentials *service.CredentialService
	Sessions    *session.Manager
	Validator   *validation.Validator
	Logger      *zerolog.Logger
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Grade    string `json:"grade" validate:"max=64"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if fields := h.Validator.Struct(input); fields != nil {
		JSONValidationError(w, msgInvalidRequest, fields, http.StatusBadRequest)
		return
	}

	err := h.Credentials.Register(r.Context(), service.RegisterParams{
		Username: input.Username,
		Password: input.Password,
		Email:    input.Email,
		Grade:    input.Grade,
	})
	if err != nil {
		serviceError(w, r, h.Logger, err)
		return
	}

	h.Logger.Info().Str("username", input.Username).Msg("user registered")
	JSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully"})
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if fields := h.Validator.Struct(input); fields != nil {
		JSONValidationError(w, msgInvalidRequest, fields, http.StatusBadRequest)
		return
	}

	user, err := h.Credentials.VerifyCredentials(r.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.IncLogins("invalid")
		} else {
			metrics.IncLogins("error")
		}
		serviceError(w, r, h.Logger, err)
		return
	}

	if err := h.Sessions.Establish(r.Context(), w, session.FromContext(r.Context()), user.Username); err != nil {
		metrics.IncLogins("error")
		serviceError(w, r, h.Logger, err)
		return
	}

	metrics.IncLogins("success")
	JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
	})
}

// ==========================
// Logout
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.End(r.Context(), w, r); err != nil {
		// The cookie is already expired; the record will be purged later.
		h.Logger.Warn().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("drop session record")
	}
	JSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}
