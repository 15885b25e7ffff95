package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	mu            sync.Mutex
)

// Options controls how the default logger is built.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // json or console
	Output io.Writer // defaults to os.Stderr
}

// Init initializes the default logger with a JSON handler writing to os.Stderr.
// Stdout is reserved for command output. It is a no-op once a logger exists.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = build(Options{})
		slog.SetDefault(defaultLogger)
	}
}

// Configure replaces the default logger.
func Configure(opts Options) error {
	if _, err := ParseLevel(opts.Level); err != nil {
		return err
	}
	switch strings.ToLower(opts.Format) {
	case "", "json", "console", "text":
	default:
		return fmt.Errorf("unknown log format %q (supported: json, console)", opts.Format)
	}

	mu.Lock()
	defer mu.Unlock()
	defaultLogger = build(opts)
	slog.SetDefault(defaultLogger)
	return nil
}

func build(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level, _ := ParseLevel(opts.Level)

	switch strings.ToLower(opts.Format) {
	case "console", "text":
		return slog.New(newConsoleHandler(out, level))
	default:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	}
}

// ParseLevel converts a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Get returns the initialized default logger.
// It calls Init() to ensure the logger is ready before returning it.
func Get() *slog.Logger {
	Init()
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

// Info logs an informational message using the default logger.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs an error message using the default logger.
func Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	Get().Error(msg, args...)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}
