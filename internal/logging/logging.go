// Package logging builds the zerolog loggers used by both binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects level, format and destination.
type Config struct {
	Level  string
	Format string
	// File, when set, receives the logs instead of Stderr.
	File string
	// Stderr overrides os.Stderr; used by tests.
	Stderr io.Writer
}

// Logger is a configured logger plus the file it may own.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New builds a logger. An unknown level is an error so that typos in
// configuration surface at start-up.
func New(cfg Config) (*Logger, error) {
	lvl := zerolog.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		lvl = parsed
	}

	out := cfg.Stderr
	if out == nil {
		out = os.Stderr
	}

	l := &Logger{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("logging: mkdir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", cfg.File, err)
		}
		l.file = f
		out = f
	}

	var w io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: cfg.File != ""}
	case FormatJSON:
		w = out
	default:
		l.Close()
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	l.Logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return l, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// StateFile returns path under the per-user state directory
// (~/.local/state/orbit), falling back to the temp dir.
func StateFile(name string) string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "orbit", name)
	}
	return filepath.Join(os.TempDir(), "orbit", name)
}
