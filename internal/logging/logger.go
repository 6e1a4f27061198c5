// Package logging holds the process-wide logger shared by the search
// compilers and the capability cache.
package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. It discards everything until
// SetGlobalLogger is called.
var Logger zerolog.Logger

func init() {
	SetGlobalLogger(zerolog.Nop())
}

// SetGlobalLogger replaces the process-wide logger, including the one
// returned by Ctx for contexts without a logger.
func SetGlobalLogger(logger zerolog.Logger) {
	Logger = logger
	zerolog.DefaultContextLogger = &Logger
}

// Component returns a child of the global logger tagged with the component.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Statement adds a compiled statement to the event. Bound arguments carry
// user input, so only their number is logged.
func Statement(e *zerolog.Event, sql string, args []any) *zerolog.Event {
	return e.Str("sql", sql).Int("args", len(args))
}

func Err(err error) *zerolog.Event { return Logger.Err(err) }

func Trace() *zerolog.Event { return Logger.Trace() }

func Debug() *zerolog.Event { return Logger.Debug() }

func Info() *zerolog.Event { return Logger.Info() }

func Warn() *zerolog.Event { return Logger.Warn() }

func Error() *zerolog.Event { return Logger.Error() }

func Ctx(ctx context.Context) *zerolog.Logger { return zerolog.Ctx(ctx) }
