package config

import (
	"strings"
	"time"
)

const (
	defaultAPITimeout = 15 * time.Second
	maxAPITimeout     = 5 * time.Minute
	defaultMaxBody    = 10 << 20
)

// APIConfig contains backend API transport configuration.
type APIConfig struct {
	// BaseURL is the backend root the /auth and /api routes are resolved against.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// Timeout bounds each request, including reading the response body.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// UserAgent is sent with every request.
	UserAgent string `env:"USER_AGENT" envDefault:"mmk-ui-client"`

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	a.UserAgent = strings.TrimSpace(a.UserAgent)

	if a.Timeout <= 0 {
		a.Timeout = defaultAPITimeout
	}
	if a.Timeout > maxAPITimeout {
		a.Timeout = maxAPITimeout
	}
	if a.MaxBodyBytes <= 0 {
		a.MaxBodyBytes = defaultMaxBody
	}
}
