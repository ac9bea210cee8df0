package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/internal/adapters/httpapi"
	"github.com/target/mmk-ui-client/internal/adapters/memory"
	"github.com/target/mmk-ui-client/internal/session"
	"github.com/target/mmk-ui-client/internal/testutil"
)

// stack wires the clients against a fake backend with in-memory storage.
type stack struct {
	backend *testutil.Backend
	storage *memory.Storage
	session *session.Store
	events  *testutil.Recorder
	opts    ClientOptions
}

func newStack(t *testing.T) *stack {
	t.Helper()
	backend := testutil.NewBackend(t)
	storage := memory.NewStorage()
	sess := session.NewStore(session.StoreOptions{Storage: storage})
	transport, err := httpapi.NewClient(httpapi.Config{BaseURL: backend.URL(), Tokens: sess})
	require.NoError(t, err)
	rec := &testutil.Recorder{}
	return &stack{
		backend: backend,
		storage: storage,
		session: sess,
		events:  rec,
		opts:    ClientOptions{Transport: transport, Session: sess, Events: rec},
	}
}

func (s *stack) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, err := s.storage.Get(context.Background(), key)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *stack) storedJSON(t *testing.T, key string) map[string]any {
	t.Helper()
	raw, ok := s.stored(t, key)
	require.True(t, ok, "key %q not persisted", key)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}
