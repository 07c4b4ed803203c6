// Package logger adapts log/slog to domain.Logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"pdf-annotator/internal/domain"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// AppLogger implements the domain.Logger interface
type AppLogger struct {
	logger *slog.Logger
}

// NewLogger creates a logger writing to stdout
func NewLogger(levelStr, format string) domain.Logger {
	return New(os.Stdout, levelStr, format)
}

// NewLoggerTo creates a text logger writing to w.
func NewLoggerTo(w io.Writer, levelStr string) domain.Logger {
	return New(w, levelStr, FormatText)
}

// New creates a logger writing records in the given format to w. Unknown
// formats fall back to text.
func New(w io.Writer, levelStr, format string) *AppLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}
	var h slog.Handler
	if strings.EqualFold(format, FormatJSON) {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &AppLogger{logger: slog.New(h)}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.logger.Info(msg, pairs(fields)...)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	args := pairs(fields)
	if err != nil {
		args = append([]any{slog.String("error", err.Error())}, args...)
	}
	l.logger.Error(msg, args...)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.logger.Debug(msg, pairs(fields)...)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.logger.Warn(msg, pairs(fields)...)
}

// pairs drops a dangling key so slog does not emit !BADKEY.
func pairs(fields []interface{}) []any {
	return fields[:len(fields)&^1]
}

// ParseLevel converts a level name to a slog level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
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
