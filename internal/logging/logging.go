// Package logging builds the application slog.Logger: a charm console
// handler on stderr and an optional rotating JSON file, both behind a
// redacting handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

type Options struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
	// Console defaults to stderr. Set Quiet to drop console output, as the
	// TUI does while it owns the terminal.
	Console io.Writer
	Quiet   bool
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

// New returns the logger and a closer for the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	handlers := make([]slog.Handler, 0, 2)
	if !opts.Quiet {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		handlers = append(handlers, NewConsoleHandler(console, level))
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		writer, err := NewRotatingWriter(RotationConfig{
			File:      opts.File,
			MaxSizeMB: opts.MaxSizeMB,
			MaxFiles:  opts.MaxFiles,
		})
		if err != nil {
			return nil, nil, err
		}
		closer = writer
		handlers = append(handlers, slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(NewRedactingHandler(NewTeeHandler(handlers...))), closer, nil
}

// NewConsoleHandler is a charm logger, which implements slog.Handler.
func NewConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return clog.NewWithOptions(w, clog.Options{
		Level:           clog.Level(level),
		ReportTimestamp: true,
		Prefix:          "stickynotes",
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
