// Package logger builds the slog logger used by the bookreport command.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrFormat is returned for a format other than text or json.
var ErrFormat = errors.New("unknown log format")

// Config holds logger configuration.
type Config struct {
	Level     string // debug, info, warn or error
	Format    string // text or json
	AddSource bool
}

// ParseLevel parses a level name, ignoring case. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, err
	}
	return level, nil
}

// New returns a logger writing to w.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, cfg.Format)
	}
	return slog.New(handler), nil
}
