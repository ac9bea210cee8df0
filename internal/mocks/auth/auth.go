package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.SessionContext = (*MemorySession)(nil)

// ErrPersist is the default error returned when persistence failure is simulated.
var ErrPersist = errors.New("persist failed")

// MemorySession is an in-memory SessionContext with no storage behind it. Setting
// FailPersist makes every storage-backed mutation apply in memory and then report
// an error, the way a store whose backend went away does.
type MemorySession struct {
	FailPersist bool
	PersistErr  error

	mu           sync.Mutex
	token        string
	refreshToken string
	user         domainauth.Record
	calls        []string
}

// NewMemorySession returns an empty, unauthenticated session.
func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

// NewAuthenticatedSession returns a session already holding token and user.
func NewAuthenticatedSession(token, refreshToken string, user domainauth.Record) *MemorySession {
	return &MemorySession{token: token, refreshToken: refreshToken, user: user.Clone()}
}

func (m *MemorySession) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

func (m *MemorySession) CurrentUser() domainauth.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.user) == 0 {
		return nil
	}
	return m.user.Clone()
}

func (m *MemorySession) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemorySession) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshToken
}

func (m *MemorySession) SetSession(_ context.Context, token, refreshToken string, user domainauth.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "SetSession")
	m.token, m.refreshToken, m.user = token, refreshToken, user.Clone()
	return m.persistErr()
}

func (m *MemorySession) SetRegisteredSession(_ context.Context, token string, user domainauth.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "SetRegisteredSession")
	m.token, m.refreshToken, m.user = token, "", user.Clone()
	return m.persistErr()
}

func (m *MemorySession) SetUser(user domainauth.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "SetUser")
	m.user = user.Clone()
}

func (m *MemorySession) ClearSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "ClearSession")
	m.token, m.refreshToken, m.user = "", "", nil
	return m.persistErr()
}

// Calls returns the mutating methods invoked so far, in order.
func (m *MemorySession) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MemorySession) persistErr() error {
	if !m.FailPersist {
		return nil
	}
	if m.PersistErr != nil {
		return m.PersistErr
	}
	return ErrPersist
}
