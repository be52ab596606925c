// Package logging provides structured logging using slog.
// Logs are written as JSON to <state dir>/debug.log in append mode, or as
// text to stderr in verbose mode.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// LogFileName is the name of the debug log file inside the state directory.
const LogFileName = "debug.log"

var (
	// defaultLogger is the package-level logger.
	defaultLogger *slog.Logger
	// logFile is the file handle for the log file.
	logFile *os.File
	// mu protects concurrent access to the logger.
	mu sync.RWMutex
)

// Init initializes the package logger.
// When verbose is set, debug output goes to stderr. Otherwise logs are appended
// to <stateDir>/debug.log; an empty stateDir disables logging.
func Init(stateDir string, verbose bool) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	if verbose {
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		return nil
	}

	var w io.Writer = io.Discard
	if stateDir != "" {
		if err := os.MkdirAll(stateDir, 0755); err == nil {
			f, err := os.OpenFile(filepath.Join(stateDir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				logFile = f
				w = f
			}
		}
	}

	defaultLogger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return nil
}

// Close closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Logger returns the default logger.
// If not initialized, returns a no-op logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if defaultLogger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return defaultLogger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs at warning level.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
