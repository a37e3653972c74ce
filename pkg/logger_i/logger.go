package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/akolanti/docqa-client/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	inner *slog.Logger
}

// Init installs the default slog logger. Stdout is reserved for the chat, so logs
// go to a rotated file when one is configured and to stderr otherwise.
func Init(cfg *config.Config) io.Closer {
	options := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var sink io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    config.LogMaxSizeMB,
			MaxBackups: config.LogMaxBackups,
			MaxAge:     config.LogMaxAgeDays,
			Compress:   config.LogCompression,
		}
		sink = rotating
		closer = rotating
	}

	var handler slog.Handler
	if cfg.Production {
		handler = slog.NewJSONHandler(sink, options)
	} else {
		handler = slog.NewTextHandler(sink, options)
	}
	slog.SetDefault(slog.New(handler))
	return closer
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, args...)
}

// With returns a child logger, the receiver is left untouched.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// Slog exposes the underlying logger for packages that take a *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.inner
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
