package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultAPIURL   = "http://localhost:8080"
	sessionFileName = ".educompanion_session"
)

var apiURLFlag string

// SetAPIURL overrides EDU_API_URL for the rest of the process. An empty
// value restores the environment lookup.
func SetAPIURL(u string) { apiURLFlag = u }

// APIURL returns the base URL for the EduCompanion API: the --api-url flag,
// then EDU_API_URL, then http://localhost:8080.
func APIURL() string {
	if apiURLFlag != "" {
		return apiURLFlag
	}
	if v := os.Getenv("EDU_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// SessionPath returns the file holding the saved session, EDU_SESSION_FILE
// or ~/.educompanion_session.
func SessionPath() string {
	if v := os.Getenv("EDU_SESSION_FILE"); v != "" {
		return v
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return sessionFileName
	}
	return filepath.Join(dir, sessionFileName)
}

// User is the profile returned at login.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Grade    string `json:"grade"`
}

// Session is what the CLI persists between invocations: the server's
// cookies and the profile of the logged-in user.
type Session struct {
	Cookies map[string]string `json:"cookies"`
	User    *User             `json:"user,omitempty"`
}

// LoadSession reads the saved session. A missing file is an empty session.
func LoadSession() (*Session, error) {
	s := &Session{Cookies: map[string]string{}}
	data, err := os.ReadFile(SessionPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", SessionPath(), err)
	}
	if s.Cookies == nil {
		s.Cookies = map[string]string{}
	}
	return s, nil
}

// SaveSession writes s readable only by the current user.
func SaveSession(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(SessionPath(), data, 0600)
}

// ClearSession removes the saved session. It reports whether one existed.
func ClearSession() (bool, error) {
	err := os.Remove(SessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
