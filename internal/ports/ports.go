package ports

// Package ports defines interfaces (hexagonal ports) for the client's collaborators.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"net/http"
	"net/url"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
)

// Request describes one outbound call to the backend.
type Request struct {
	Method string
	// Path is resolved against the transport's base URL.
	Path  string
	Query url.Values
	// Body is JSON-encoded when non-nil.
	Body any
}

// Response is the raw result of a completed call. Non-2xx statuses are returned as
// responses when the backend sent a body that can carry an envelope.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs HTTP calls against the backend.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// KeyValueStore is the durable client storage that mirrors the session.
// Get returns a not-found AppError when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// EventPublisher announces lifecycle outcomes.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload map[string]any) error
}

// SessionContext is the session capability injected into every client.
type SessionContext interface {
	IsAuthenticated() bool
	CurrentUser() domainauth.Record
	Token() string
	RefreshToken() string

	// SetSession commits token, refresh token and user to memory and storage.
	SetSession(ctx context.Context, token, refreshToken string, user domainauth.Record) error
	// SetRegisteredSession commits the registration result; no refresh token is persisted.
	SetRegisteredSession(ctx context.Context, token string, user domainauth.Record) error
	// SetUser replaces the in-memory user only.
	SetUser(user domainauth.Record)
	// ClearSession resets memory and removes the persisted session keys.
	ClearSession(ctx context.Context) error
}
