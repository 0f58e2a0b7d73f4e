package models

import (
	"time"
)

type UserRole string

const (
	RoleRespondent UserRole = "respondent"
	RoleAuthor     UserRole = "author"
	RoleAdmin      UserRole = "admin"
)

// User is resolved from the identity provider and never persisted locally.
type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`

	AvatarURL     *string `json:"avatar_url,omitempty"`
	EmailVerified bool    `json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
