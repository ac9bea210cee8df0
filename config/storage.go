package config

import (
	"fmt"
	"strings"
)

// StorageBackend selects where the session mirror is persisted.
type StorageBackend string

const (
	// StorageBackendMemory keeps the session for the lifetime of the process only.
	StorageBackendMemory StorageBackend = "memory"
	// StorageBackendRedis persists the session in Redis so it survives restarts.
	StorageBackendRedis StorageBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (s *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*s = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: memory, redis)", v)
	}
}

// StorageConfig controls the persistent session storage.
type StorageConfig struct {
	Backend StorageBackend `env:"BACKEND" envDefault:"memory"`

	// KeyPrefix namespaces the session keys so several profiles can share one Redis.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"mmk:storage:"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StorageBackendMemory
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	Addr               string   `env:"ADDR"                 envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Sanitize applies guardrails to Redis configuration values.
func (r *RedisConfig) Sanitize() {
	r.Addr = strings.TrimSpace(r.Addr)
	r.SentinelNodes = compact(r.SentinelNodes)
	r.ClusterNodes = compact(r.ClusterNodes)

	if r.DB < 0 {
		r.DB = 0
	}
	if r.UseSentinel && len(r.SentinelNodes) == 0 {
		r.UseSentinel = false
	}
	if r.UseCluster && len(r.ClusterNodes) == 0 {
		r.UseCluster = false
	}
}

// Addrs returns the seed addresses for the configured topology.
func (r *RedisConfig) Addrs() []string {
	switch {
	case r.UseCluster:
		return r.ClusterNodes
	case r.UseSentinel:
		return r.SentinelNodes
	default:
		return []string{r.Addr}
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
