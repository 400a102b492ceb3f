package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes caps JSON bodies on /api routes. Documents and progress
// objects are small, so 1 MiB is generous.
const DefaultMaxBodyBytes = 1 << 20

// MessageBodyTooLarge is the message sent with a 413.
const MessageBodyTooLarge = "request body too large"

// MaxBytes rejects requests whose declared Content-Length is over limit and
// wraps every other body in http.MaxBytesReader, so a chunked upload that runs
// past the limit fails in the handler's decoder instead.
func MaxBytes(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, MessageBodyTooLarge)
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
