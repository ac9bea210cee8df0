package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/adapters/memory"
	redisstore "github.com/target/mmk-ui-client/internal/adapters/redis"
	"github.com/target/mmk-ui-client/internal/ports"
)

const redisPingTimeout = 5 * time.Second

// StorageResult holds the session storage and a release function for its resources.
type StorageResult struct {
	Storage ports.KeyValueStore
	Close   func() error
}

// ConnectStorage builds the session storage backend selected by config.
func ConnectStorage(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (StorageResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.UsesRedis() {
		return StorageResult{Storage: memory.NewStorage(), Close: func() error { return nil }}, nil
	}

	client, err := ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return StorageResult{}, err
	}
	logger.DebugContext(ctx, "redis storage connected",
		"addrs", strings.Join(cfg.Redis.Addrs(), ","),
		"prefix", cfg.Storage.KeyPrefix)

	return StorageResult{
		Storage: redisstore.NewStorageWithPrefix(client, cfg.Storage.KeyPrefix),
		Close:   client.Close,
	}, nil
}

// ConnectRedis establishes a connection to Redis using the configured topology.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single, sentinel, or cluster clients at runtime.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	if cfg.UseSentinel && cfg.SentinelMasterName == "" {
		return nil, errors.New("redis sentinel configuration requires a master name")
	}

	var client redis.UniversalClient
	switch {
	case cfg.UseCluster:
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    cfg.ClusterNodes,
			Password: cfg.Password,
		})
	case cfg.UseSentinel:
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.SentinelMasterName,
			SentinelAddrs:    cfg.SentinelNodes,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
			DB:               cfg.DB,
		})
	default:
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}
	return client, nil
}
