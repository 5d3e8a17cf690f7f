// Package logging builds the application's slog logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Supported output formats.
const (
	FormatText   = "text"
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

const timeFormat = "2006-01-02 15:04:05"

// Options configure New.
type Options struct {
	Level  string
	Format string
	// Writer receives the primary handler's output. Nil means os.Stderr.
	Writer io.Writer
	// NoColor disables ANSI colour in the text format. The pretty format
	// detects colour support from Writer.
	NoColor bool
	Fluent  FluentOptions
}

// New returns a logger and a close function that flushes any remote sink.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var primary slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		primary = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: timeFormat,
			NoColor:    opts.NoColor,
		})
	case FormatPretty:
		primary = NewCharmHandler(w, &CharmHandlerOptions{
			Level:      level,
			TimeFormat: timeFormat,
			Prefix:     "nestview",
		})
	case FormatJSON:
		primary = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	closeFn := func() error { return nil }
	handler := primary
	if opts.Fluent.Enabled() {
		client, err := dialFluent(opts.Fluent)
		if err != nil {
			return nil, nil, err
		}
		handler = Fanout(primary, NewFluentHandler(client, level, opts.Fluent.tag()))
		closeFn = client.Close
	}
	return slog.New(handler), closeFn, nil
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Rotation limits for the log file.
const (
	maxFileSizeMB  = 10
	maxFileBackups = 3
	maxFileAgeDays = 28
)

// OpenFile returns a rotating writer appending to path. Parent directories
// are created up front so a bad path fails here rather than on first write.
func OpenFile(path string) (io.WriteCloser, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxFileBackups,
		MaxAge:     maxFileAgeDays,
		Compress:   true,
	}, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
