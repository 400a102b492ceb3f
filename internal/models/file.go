package models

import "time"

// UserFile is the single free-text document owned by a user.
type UserFile struct {
	Username  string    `json:"-" bson:"username"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"-" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
