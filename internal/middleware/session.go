package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/session"
)

// MessageNotLoggedIn is the body message for requests rejected by RequireSession.
const MessageNotLoggedIn = "Not logged in"

// Session resolves the session cookie once per request and stores the result
// in the request context. A store failure ends the request with 500.
func Session(m *session.Manager, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Load(r.Context(), r)
			if err != nil {
				logger.Error().Err(err).
					Str("request_id", chimw.GetReqID(r.Context())).
					Msg("session load failed")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}

// RequireSession rejects anonymous requests with 401. Use after Session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).Authenticated() {
			writeError(w, http.StatusUnauthorized, MessageNotLoggedIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
