package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestSigningKey signs tokens minted by MintToken.
var TestSigningKey = []byte("test-signing-key")

// MintToken returns an HS256 JWT for subject expiring at exp.
func MintToken(t TestingTB, subject string, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(TestSigningKey)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return s
}

// AuthEnvelopeBuilder provides a fluent interface for building /auth responses.
type AuthEnvelopeBuilder struct {
	body   map[string]any
	nested bool
}

// NewAuthEnvelope creates a successful envelope with no credentials.
func NewAuthEnvelope() *AuthEnvelopeBuilder {
	return &AuthEnvelopeBuilder{body: map[string]any{"success": true}}
}

// Failed marks the envelope as failed with message.
func (b *AuthEnvelopeBuilder) Failed(message string) *AuthEnvelopeBuilder {
	b.body["success"] = false
	if message != "" {
		b.body["message"] = message
	}
	return b
}

// Nested places token, refresh token and user under "data". Call it before the
// With methods.
func (b *AuthEnvelopeBuilder) Nested() *AuthEnvelopeBuilder {
	b.nested = true
	return b
}

// WithToken sets the token.
func (b *AuthEnvelopeBuilder) WithToken(token string) *AuthEnvelopeBuilder {
	return b.set("token", token)
}

// WithRefreshToken sets the refresh token.
func (b *AuthEnvelopeBuilder) WithRefreshToken(token string) *AuthEnvelopeBuilder {
	return b.set("refreshToken", token)
}

// WithUser sets the user record.
func (b *AuthEnvelopeBuilder) WithUser(user map[string]any) *AuthEnvelopeBuilder {
	return b.set("user", user)
}

func (b *AuthEnvelopeBuilder) set(key string, v any) *AuthEnvelopeBuilder {
	if !b.nested {
		b.body[key] = v
		return b
	}
	data, _ := b.body["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
		b.body["data"] = data
	}
	data[key] = v
	return b
}

// Build returns the envelope body.
func (b *AuthEnvelopeBuilder) Build() map[string]any {
	return b.body
}

// UserRecord builds a raw snake_case directory user.
func UserRecord(id, first, last string, isActive int) map[string]any {
	return map[string]any{
		"id":         id,
		"first_name": first,
		"last_name":  last,
		"email":      first + "@example.com",
		"is_active":  isActive,
	}
}
