package config

import (
	"os"
	"strings"
)

// AppConfig is the main client configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: Backend API transport configuration
//   - storage.go: Session storage backend and Redis configuration
//   - logging.go: Log level and format
//   - metrics.go: StatsD metrics emission
type AppConfig struct {
	// IsDev controls development mode behavior (debug logging, text log format).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Backend API configuration
	API APIConfig `envPrefix:"API_"`

	// Session storage configuration
	Storage StorageConfig `envPrefix:"STORAGE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`

	// Logging configuration
	Log LogConfig `envPrefix:"LOG_"`

	// Metrics configuration
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	// Check NODE_ENV for dev mode first; logging defaults depend on it
	c.detectDevMode()

	c.API.Sanitize()
	c.Storage.Sanitize()
	c.Redis.Sanitize()
	c.Log.Sanitize(c.IsDev)
	c.Metrics.Sanitize()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// UsesRedis reports whether sessions are persisted in Redis.
func (c *AppConfig) UsesRedis() bool {
	return c.Storage.Backend == StorageBackendRedis
}
