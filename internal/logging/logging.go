// Package logging provides the structured logger shared by reloaders,
// registries and the CLI. It is a thin layer over log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger captures the structured logging calls used across tintcore.
// Arguments follow slog key/value conventions.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Level is a minimum log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level. Unknown values yield LevelInfo.
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

func (l Level) slog() slog.Level {
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

// Config configures New. The zero value logs Info and above as text to stderr.
type Config struct {
	Level  Level
	JSON   bool
	Writer io.Writer
}

// New returns a slog-backed Logger.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slog()}
	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noopLogger{} }

// OrNoop substitutes Noop for a nil logger.
func OrNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}

// With returns a logger that prefixes every call with args. Loggers that are
// not *slog.Logger are wrapped.
func With(l Logger, args ...any) Logger {
	l = OrNoop(l)
	if sl, ok := l.(*slog.Logger); ok {
		return sl.With(args...)
	}
	if _, ok := l.(noopLogger); ok {
		return l
	}
	return prefixed{next: l, args: args}
}

type prefixed struct {
	next Logger
	args []any
}

func (p prefixed) merge(args []any) []any {
	out := make([]any, 0, len(p.args)+len(args))
	out = append(out, p.args...)
	return append(out, args...)
}

func (p prefixed) Debug(msg string, args ...any) { p.next.Debug(msg, p.merge(args)...) }
func (p prefixed) Info(msg string, args ...any)  { p.next.Info(msg, p.merge(args)...) }
func (p prefixed) Warn(msg string, args ...any)  { p.next.Warn(msg, p.merge(args)...) }
func (p prefixed) Error(msg string, args ...any) { p.next.Error(msg, p.merge(args)...) }
