// Package logging wraps log/slog with the conventions used across projmo:
// level from the PROJMO_LOG_LEVEL environment variable, text or JSON
// output, and a shared discard logger for tests and library defaults.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel is the environment variable that selects the log level.
const EnvLevel = "PROJMO_LOG_LEVEL"

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// Options configures New.
type Options struct {
	Writer io.Writer
	JSON   bool
	Level  slog.Level
}

// New builds a logger writing to opts.Writer (stderr when nil).
func New(opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, ho)
	} else {
		h = slog.NewTextHandler(w, ho)
	}
	return &Logger{slog.New(h)}
}

// FromEnv builds a stderr logger with its level taken from PROJMO_LOG_LEVEL.
func FromEnv(json bool) *Logger {
	return New(Options{JSON: json, Level: ParseLevel(os.Getenv(EnvLevel))})
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Options{Writer: io.Discard, Level: slog.LevelError + 4})
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR to slog levels. Anything else
// is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// Failure logs err at error level under msg.
func (l *Logger) Failure(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.Log(ctx, slog.LevelError, msg, args...)
}

// WrapError adds context to err, keeping it matchable with errors.Is.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
