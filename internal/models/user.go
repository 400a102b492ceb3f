package models

import "time"

// DefaultGrade is stored when registration omits the grade.
const DefaultGrade = "Not specified"

// Progress is a caller-defined JSON object kept on the user record.
type Progress map[string]any

type User struct {
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash []byte    `json:"-" bson:"password"`
	Grade        string    `json:"grade" bson:"grade"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	Progress     Progress  `json:"progress,omitempty" bson:"progress,omitempty"`
}

// PublicUser is the part of a user returned to clients after login.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Grade    string `json:"grade"`
}

// Public strips the hash and progress from u.
func (u *User) Public() PublicUser {
	return PublicUser{Username: u.Username, Email: u.Email, Grade: u.Grade}
}
