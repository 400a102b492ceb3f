package models

import "time"

// Session is the server-held half of a login; the cookie only carries ID.
type Session struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Expired reports whether s is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
