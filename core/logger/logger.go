package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	envLocal       = "local"
	envDevelopment = "development"
	envProduction  = "production"
)

var (
	mu       sync.RWMutex
	instance = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Init replaces the process logger. Local runs get a text handler, everything
// else logs JSON.
func Init(env string, level string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch env {
	case envLocal:
		handler = slog.NewTextHandler(os.Stdout, opts)
	case envDevelopment, envProduction:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	mu.Lock()
	instance = slog.New(handler)
	mu.Unlock()
}

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

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Slog exposes the underlying logger for libraries that accept a *slog.Logger.
func Slog() *slog.Logger {
	return get()
}

func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	get().Error(msg, args...)
}
