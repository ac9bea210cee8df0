package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of transport/storage concerns.

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Record is a backend-sourced user profile: a mapping of fields.
type Record map[string]any

// IsEmpty reports whether the record has no fields.
func (r Record) IsEmpty() bool { return len(r) == 0 }

// String returns the field as a string, formatting non-string values.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ID returns the "id" field as a string.
func (r Record) ID() string { return r.String("id") }

// Clone returns a shallow copy; nil becomes an empty record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// State is the session-level authentication state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the credentials before they are sent.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

// RegisterData is submitted to the registration endpoint.
type RegisterData struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate checks the registration payload before it is sent.
func (r RegisterData) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
	)
}

// Info is the combined snapshot persisted under the "info" storage key.
// RefreshToken is nil on the registration path, where it is not persisted.
type Info struct {
	Token        string  `json:"token"`
	RefreshToken *string `json:"refreshToken,omitempty"`
	User         Record  `json:"user"`
}
