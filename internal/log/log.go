// Package log provides a global zerolog logger and context-scoped child loggers.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	SetOutput(os.Stdout)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetOutput replaces the writer of the global logger. Used by tests to capture output.
func SetOutput(w io.Writer) {
	l := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = l
	zerolog.DefaultContextLogger = &l
}

// Logger returns the global zerolog Logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// SetLevel sets the minimum global log level.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// ParseLevel parses LOG_LEVEL values ("debug", "info", "warn", ...). Unknown values fall back to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Debug starts a new message with debug level.
//
// You must call Msg on the returned event in order to send the event.
func Debug(ctx context.Context) *zerolog.Event {
	return contextLogger(ctx).Debug()
}

// Info starts a new message with info level.
//
// You must call Msg on the returned event in order to send the event.
func Info(ctx context.Context) *zerolog.Event {
	return contextLogger(ctx).Info()
}

// Warn starts a new message with warn level.
//
// You must call Msg on the returned event in order to send the event.
func Warn(ctx context.Context) *zerolog.Event {
	return contextLogger(ctx).Warn()
}

// Error starts a new message with error level.
//
// You must call Msg on the returned event in order to send the event.
func Error(ctx context.Context) *zerolog.Event {
	return contextLogger(ctx).Error()
}

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called by the Msg method.
func Fatal() *zerolog.Event {
	return Logger().Fatal()
}

func contextLogger(ctx context.Context) *zerolog.Logger {
	global := Logger()
	if ctx == nil {
		return global
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled { // no logger associated with context
		return global
	}
	return l
}

// WithContext returns a context that has an associated logger and extra fields set via update.
func WithContext(ctx context.Context, update func(c zerolog.Context) zerolog.Context) context.Context {
	l := contextLogger(ctx).With().Logger()
	l.UpdateContext(update)
	return l.WithContext(ctx)
}

// Ctx returns the Logger associated with the ctx, or the global logger when none is set.
func Ctx(ctx context.Context) *zerolog.Logger {
	return contextLogger(ctx)
}

// StdLogWrapper adapts the global logger for APIs that take an io.Writer error log
// (http.Server.ErrorLog, the Telegram client logger).
type StdLogWrapper struct {
	*zerolog.Logger
}

func (l *StdLogWrapper) Write(p []byte) (n int, err error) {
	n = len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[0 : n-1]
	}
	l.Error().Msg(string(p))
	return n, nil
}

// Println and Printf let StdLogWrapper satisfy the Telegram client's BotLogger interface.
func (l *StdLogWrapper) Println(v ...any) {
	l.Debug().Msg(strings.TrimSpace(fmt.Sprint(v...)))
}

func (l *StdLogWrapper) Printf(format string, v ...any) {
	l.Debug().Msgf(format, v...)
}
