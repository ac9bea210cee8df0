// Package memory provides an in-process implementation of the client's persistent storage.
// Contents live for the lifetime of the process; it backs tests and one-shot CLI runs.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/ports"
)

var _ ports.KeyValueStore = (*Storage)(nil)

// ErrNotFound is returned when a key is absent.
var ErrNotFound error = apperrors.NotFound("storage key not found")

// Storage is a mutex-guarded map.
type Storage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{items: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("storage key cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Snapshot returns a copy of every stored key and value.
func (s *Storage) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.items)
}
