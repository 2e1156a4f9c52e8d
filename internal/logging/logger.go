// Package logging provides structured logging for go-batch-runner.
//
// Supervisor logs go to stderr; stdout is reserved for the verbatim
// mirror of the batch process's log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Options selects handler format, level, and an optional rotated file
// the supervisor's own log is mirrored into.
type Options struct {
	Format  string // "json" or "text"
	Level   string // "debug", "info", "warn", "error"
	Verbose bool   // forces debug level
	File    string // optional rotated log file path
}

// New creates a structured logger per opts.
func New(opts Options) *slog.Logger {
	logLevel := parseLevel(opts.Level)
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if opts.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	return slog.New(newHandler(w, opts.Format, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}))
}

// NewWithWriter creates a logger that writes to a custom writer.
// Useful for testing.
func NewWithWriter(w io.Writer, format, level string) *slog.Logger {
	return slog.New(newHandler(w, format, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	switch strings.ToLower(format) {
	case "text":
		return slog.NewTextHandler(w, opts)
	default:
		// Default to JSON for structured logging.
		return slog.NewJSONHandler(w, opts)
	}
}

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// SetDefault sets the default logger for the slog package.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
