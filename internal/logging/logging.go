package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the minimal logging surface the ingestor, stores and API use
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// OrNop returns l, or a NopLogger when l is nil
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// SlogLogger adapts a *slog.Logger to Logger. Messages are formatted
// eagerly only when the level is enabled.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger writes text-formatted records to w at the given level
func NewSlogLogger(w io.Writer, level slog.Level) *SlogLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(handler)}
}

// Slog exposes the underlying logger for callers that log structured attributes
func (l *SlogLogger) Slog() *slog.Logger { return l.logger }

func (l *SlogLogger) Debugf(format string, args ...any) { l.log(slog.LevelDebug, format, args) }
func (l *SlogLogger) Infof(format string, args ...any)  { l.log(slog.LevelInfo, format, args) }
func (l *SlogLogger) Warnf(format string, args ...any)  { l.log(slog.LevelWarn, format, args) }
func (l *SlogLogger) Errorf(format string, args ...any) { l.log(slog.LevelError, format, args) }

func (l *SlogLogger) log(level slog.Level, format string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, args...))
}

// ParseLevel maps a config or flag value to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
