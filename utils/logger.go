package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger provides leveled, printf-style logging on top of slog. Dev
// environments get colourised tint output, everything else JSON lines.
type Logger struct {
	slog *slog.Logger
}

// NewLogger creates a Logger for the given environment and level name.
func NewLogger(env, level string) *Logger {
	return newLogger(os.Stdout, env, parseLevel(level))
}

// NewTestLogger returns a Logger that drops everything below error level,
// for use in tests.
func NewTestLogger() *Logger {
	return newLogger(io.Discard, "test", slog.LevelError)
}

func newLogger(w io.Writer, env string, level slog.Level) *Logger {
	var handler slog.Handler
	switch strings.ToLower(env) {
	case "dev", "local", "test":
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return &Logger{slog: slog.New(handler)}
}

func parseLevel(s string) slog.Level {
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

// Slog exposes the underlying structured logger for middleware that logs
// key/value attributes.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) Info(format string, args ...any) {
	l.slog.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.slog.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.slog.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	l.slog.Debug(fmt.Sprintf(format, args...))
}
