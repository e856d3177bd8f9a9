package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log is the global logger instance
var Log = slog.New(slog.NewTextHandler(io.Discard, nil))

// Setup initializes the global logger based on the environment.
// level accepts debug, info, warn or error; anything else means info.
func Setup(env, level string) {
	SetupWriter(os.Stdout, env, level)
}

// SetupWriter is Setup with an explicit destination, used by tests and CLIs.
func SetupWriter(w io.Writer, env, level string) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// With returns a child logger carrying the given attributes
func With(args ...any) *slog.Logger {
	return Log.With(args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}
