// Package logging is a thin wrapper around log/slog that tags every entry
// with the subsystem it came from (Session, Store, Bridge, Relay, ...).
//
// Token values are never passed to this package; callers log account emails,
// URLs and flow ids only.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level defines the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Init initializes the logging system. It should be called once at startup;
// until then, entries go to stderr at info level.
func Init(level Level, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level.slogLevel(),
	})

	mu.Lock()
	logger = slog.New(handler)
	slog.SetDefault(logger)
	mu.Unlock()
}

func log(level Level, subsystem string, err error, format string, args ...interface{}) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		l = slog.Default()
	}

	if !l.Enabled(context.Background(), level.slogLevel()) {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	l.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, format string, args ...interface{}) {
	log(LevelDebug, subsystem, nil, format, args...)
}

// Info logs an informational message.
func Info(subsystem string, format string, args ...interface{}) {
	log(LevelInfo, subsystem, nil, format, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, format string, args ...interface{}) {
	log(LevelWarn, subsystem, nil, format, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, format string, args ...interface{}) {
	log(LevelError, subsystem, err, format, args...)
}
