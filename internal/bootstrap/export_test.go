package bootstrap

import "log/slog"

func slogDefault() *slog.Logger { return slog.Default() }

func restoreDefault(l *slog.Logger) { slog.SetDefault(l) }
