package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// UnmarshalText implements encoding.TextUnmarshaler for LogFormat.
func (f *LogFormat) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "json", "text":
		*f = LogFormat(v)
		return nil
	default:
		return fmt.Errorf("invalid LogFormat: %q (valid options: json, text)", v)
	}
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Empty means info, or debug in dev mode.
	Level string `env:"LEVEL"`

	// Format is json or text. Empty means json, or text in dev mode.
	Format LogFormat `env:"FORMAT"`
}

// Sanitize fills dev-aware defaults.
func (l *LogConfig) Sanitize(isDev bool) {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
		if isDev {
			l.Level = "debug"
		}
	}
	if l.Format == "" {
		l.Format = LogFormatJSON
		if isDev {
			l.Format = LogFormatText
		}
	}
}

// SlogLevel parses Level; unknown values map to info.
func (l *LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
