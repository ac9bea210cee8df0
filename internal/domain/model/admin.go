package model

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// AdminUser is a user as seen through the admin API.
type AdminUser struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Roles       []string `json:"roles"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at"`
	LastLoginAt string   `json:"lastLoginAt,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Post is a content item managed from the admin console.
type Post struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	AuthorID    string `json:"authorId"`
	AuthorEmail string `json:"authorEmail"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Published   bool   `json:"published"`
}

// UserStats summarizes user counts.
type UserStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// PostStats summarizes post counts.
type PostStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Draft     int `json:"draft"`
}

// Stats is the system statistics snapshot.
type Stats struct {
	Users UserStats `json:"users"`
	Posts PostStats `json:"posts"`
}

// UpdateUserRequest carries the mutable admin fields of a user. Nil fields are omitted.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// Validate checks the update payload.
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.FirstName, validation.NilOrNotEmpty),
		validation.Field(&r.LastName, validation.NilOrNotEmpty),
	)
}

// RoleAssignment assigns a role to a user by name.
type RoleAssignment struct {
	RoleName string `json:"roleName"`
}

// Validate checks the assignment payload.
func (r RoleAssignment) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RoleName, validation.Required),
	)
}

// PasswordChange sets a new password for a user.
type PasswordChange struct {
	NewPassword string `json:"newPassword"`
}

// Validate checks the password payload.
func (p PasswordChange) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.NewPassword, validation.Required),
	)
}

// Permission is a named authorization capability.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Role is a named authorization entity owning a set of permissions.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	IsDefault   bool         `json:"isDefault,omitempty"`
	IsActive    bool         `json:"is_active"`
	Permissions []Permission `json:"permissions"`
}

// RoleInput is the create/update payload for a role.
type RoleInput struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Validate checks the role payload.
func (r RoleInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}
