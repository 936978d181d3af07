// Package logging builds the structured logger shared by the engine, the seed
// loader, the journal and the TUI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cachemaker/internal/config"
)

func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger at cfg.Level. When cfg.File is set, records are
// appended to that file; otherwise they go to fallback, and a nil fallback
// discards them (the TUI owns the terminal). The returned close func is never
// nil.
func New(cfg config.LogConfig, fallback io.Writer) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	path := strings.TrimSpace(cfg.File)
	if path == "" {
		if fallback == nil {
			return Nop(), noop, nil
		}
		return slog.New(newHandler(fallback, cfg.Level)), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, noop, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, err
	}
	return slog.New(newHandler(f, cfg.Level)), f.Close, nil
}

func newHandler(w io.Writer, level string) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
}
