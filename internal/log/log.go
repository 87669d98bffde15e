package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, LevelInfo, "text")
	level  = new(slog.LevelVar)
)

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a
// Level. Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

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

func newLogger(w io.Writer, l Level, format string) *slog.Logger {
	level.Set(l.slogLevel())
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Configure replaces the global logger. format is "text" (default) or "json".
func Configure(l Level, format string) {
	SetOutput(os.Stderr, l, format)
}

// SetOutput is Configure with an explicit writer; tests use it to capture lines.
func SetOutput(w io.Writer, l Level, format string) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, l, format)
}

func SetLevel(l Level) {
	level.Set(l.slogLevel())
}

// Logger exposes the underlying slog.Logger for middleware that wants
// typed attributes.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, kv ...any) {
	logWithLevel(slog.LevelDebug, msg, kv...)
}

func Info(msg string, kv ...any) {
	logWithLevel(slog.LevelInfo, msg, kv...)
}

func Warn(msg string, kv ...any) {
	logWithLevel(slog.LevelWarn, msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	logWithLevel(slog.LevelError, msg, extended...)
}

func logWithLevel(l slog.Level, msg string, kv ...any) {
	lg := Logger()
	if !lg.Enabled(context.Background(), l) {
		return
	}
	// A dangling key would render as !BADKEY; drop it.
	if len(kv)%2 == 1 {
		kv = kv[:len(kv)-1]
	}
	lg.Log(context.Background(), l, msg, kv...)
}
