package redis

// Package redis provides a Redis-backed implementation of the client's persistent storage.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/ports"
)

const defaultPrefix = "mmk:storage:"

var _ ports.KeyValueStore = (*Storage)(nil)

// Storage persists session keys in Redis. Keys never expire; the session layer decides
// when they are removed.
type Storage struct {
	client redis.UniversalClient
	prefix string
}

// NewStorage creates a Redis storage using the default key prefix.
func NewStorage(client redis.UniversalClient) *Storage {
	return &Storage{
		client: client,
		prefix: defaultPrefix,
	}
}

// NewStorageWithPrefix creates a Redis storage with a custom key prefix, letting several
// client profiles share one Redis database.
func NewStorageWithPrefix(client redis.UniversalClient, prefix string) *Storage {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Storage{
		client: client,
		prefix: prefix,
	}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrNotFound
	}

	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("storage key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to remove
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// ErrNotFound is returned when a key is absent.
var ErrNotFound error = apperrors.NotFound("storage key not found")
