package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr is a structured field. Helpers below keep call sites free of slog.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error renders a nil error as "<nil>" so the key is always present.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with the component that owns it (scanner,
// matcher, linker). A nil logger yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// Defaults used when a caller leaves the field out.
const (
	defaultErrorHint  = "run `autolink logs --run <id>` for details"
	defaultWarnImpact = "run continued with partial results"
	defaultErrImpact  = "run stopped before every entry was linked"
)

// WarnWithContext logs a recoverable failure. The record always carries
// event_type, error_hint and impact so `autolink logs` can filter on them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logWithContext(logger, slog.LevelWarn, msg, eventType, defaultWarnImpact, attrs)
}

// ErrorWithContext is WarnWithContext for failures that end a run.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logWithContext(logger, slog.LevelError, msg, eventType, defaultErrImpact, attrs)
}

func logWithContext(logger *slog.Logger, level slog.Level, msg, eventType, impact string, attrs []Attr) {
	if logger == nil {
		return
	}
	seen := make(map[string]bool, len(attrs))
	args := make([]any, 0, len(attrs)+3)
	for _, attr := range attrs {
		seen[attr.Key] = true
		args = append(args, attr)
	}
	if !seen[FieldEventType] {
		args = append(args, String(FieldEventType, eventType))
	}
	if !seen[FieldErrorHint] {
		args = append(args, String(FieldErrorHint, defaultErrorHint))
	}
	if !seen[FieldImpact] {
		args = append(args, String(FieldImpact, impact))
	}
	logger.Log(context.Background(), level, msg, args...)
}
