// Package session holds the authenticated identity of the client: the bearer token,
// the refresh credential and the current user profile, mirrored into persistent storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/ports"
)

// Persistent storage keys. Other readers of the storage depend on these exact names.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyInfo         = "info"
)

var _ ports.SessionContext = (*Store)(nil)

// StoreOptions groups dependencies for Store.
type StoreOptions struct {
	Storage ports.KeyValueStore
	Logger  *slog.Logger
}

// Store is the in-memory session with a durable mirror. The zero session is
// unauthenticated with an empty user. Concurrent commits are serialized; the last
// one wins.
type Store struct {
	mu           sync.RWMutex
	token        string
	refreshToken string
	user         domainauth.Record

	storage ports.KeyValueStore
	logger  *slog.Logger
}

// NewStore constructs an empty, unauthenticated session.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		user:    domainauth.Record{},
		storage: opts.Storage,
		logger:  logger.With("component", "session"),
	}
}

// SetSession replaces token, refresh token and user in memory, then writes the
// "token", "refreshToken", "user" and "info" keys. Every key is written even when
// a value is empty so stale credentials never survive a partial response.
func (s *Store) SetSession(ctx context.Context, token, refreshToken string, user domainauth.Record) error {
	user = user.Clone()

	s.mu.Lock()
	s.token = token
	s.refreshToken = refreshToken
	s.user = user
	s.mu.Unlock()

	rt := refreshToken
	return s.persist(ctx, []entry{
		{key: KeyToken, value: token},
		{key: KeyRefreshToken, value: refreshToken},
		{key: KeyUser, json: user},
		{key: KeyInfo, json: domainauth.Info{Token: token, RefreshToken: &rt, User: user}},
	})
}

// SetRegisteredSession commits a registration result. Only "token", "user" and "info"
// are written; the refresh credential from any previous session is dropped from memory
// but its persisted key is left alone.
func (s *Store) SetRegisteredSession(ctx context.Context, token string, user domainauth.Record) error {
	user = user.Clone()

	s.mu.Lock()
	s.token = token
	s.refreshToken = ""
	s.user = user
	s.mu.Unlock()

	return s.persist(ctx, []entry{
		{key: KeyToken, value: token},
		{key: KeyUser, json: user},
		{key: KeyInfo, json: domainauth.Info{Token: token, User: user}},
	})
}

// SetUser replaces the in-memory user without touching storage or tokens.
func (s *Store) SetUser(user domainauth.Record) {
	user = user.Clone()
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// ClearSession resets memory and removes "token", "user" and "info".
// The standalone "refreshToken" key is not removed.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.refreshToken = ""
	s.user = domainauth.Record{}
	s.mu.Unlock()

	if s.storage == nil {
		return nil
	}

	var errs []error
	for _, key := range []string{KeyToken, KeyUser, KeyInfo} {
		if err := s.storage.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// IsAuthenticated reports whether a non-empty token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// State returns the session-level authentication state.
func (s *Store) State() domainauth.State {
	if s.IsAuthenticated() {
		return domainauth.StateAuthenticated
	}
	return domainauth.StateUnauthenticated
}

// CurrentUser returns a copy of the user, or nil when the user has no fields.
func (s *Store) CurrentUser() domainauth.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.user) == 0 {
		return nil
	}
	return s.user.Clone()
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// RefreshToken returns the refresh credential, or "".
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// AccessToken returns the bearer token for the HTTP transport.
func (s *Store) AccessToken() string { return s.Token() }

// ExpiresAt decodes the "exp" claim of a JWT bearer token. The signature is not
// verified; the value is only used to schedule refreshes. ok is false when the token
// is absent, opaque, or carries no expiry.
func (s *Store) ExpiresAt() (exp time.Time, ok bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Restore loads the persisted session into memory. It is meant to run once at process
// start. Missing keys leave the corresponding field empty. The refresh token is only
// restored alongside a token, and is taken from the "info" snapshot when one exists,
// since the standalone key outlives logout and registration.
func (s *Store) Restore(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	token, err := s.read(ctx, KeyToken)
	if err != nil {
		return err
	}
	refreshToken, err := s.restoreRefreshToken(ctx, token)
	if err != nil {
		return err
	}
	rawUser, err := s.read(ctx, KeyUser)
	if err != nil {
		return err
	}

	user := domainauth.Record{}
	if rawUser != "" {
		if uerr := json.Unmarshal([]byte(rawUser), &user); uerr != nil {
			return apperrors.Wrap(uerr, apperrors.ErrCodeDecode, "decode persisted user")
		}
		if user == nil {
			user = domainauth.Record{}
		}
	}

	s.mu.Lock()
	s.token = token
	s.refreshToken = refreshToken
	s.user = user
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "session restored", "authenticated", token != "")
	return nil
}

func (s *Store) restoreRefreshToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	rawInfo, err := s.read(ctx, KeyInfo)
	if err != nil {
		return "", err
	}
	if rawInfo == "" {
		return s.read(ctx, KeyRefreshToken)
	}

	var info domainauth.Info
	if uerr := json.Unmarshal([]byte(rawInfo), &info); uerr != nil {
		return "", apperrors.Wrap(uerr, apperrors.ErrCodeDecode, "decode persisted info")
	}
	if info.RefreshToken == nil {
		return "", nil
	}
	return *info.RefreshToken, nil
}

func (s *Store) read(ctx context.Context, key string) (string, error) {
	v, err := s.storage.Get(ctx, key)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

type entry struct {
	key   string
	value string
	json  any
}

func (s *Store) persist(ctx context.Context, entries []entry) error {
	if s.storage == nil {
		return nil
	}

	for _, e := range entries {
		value := e.value
		if e.json != nil {
			b, err := json.Marshal(e.json)
			if err != nil {
				return fmt.Errorf("encode %s: %w", e.key, err)
			}
			value = string(b)
		}
		if err := s.storage.Set(ctx, e.key, value); err != nil {
			return fmt.Errorf("write %s: %w", e.key, err)
		}
	}
	return nil
}
