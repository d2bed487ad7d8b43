// Package logger adapts zerolog to the key/value Logger used by the module
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	auth "github.com/goliatone/go-todo-auth"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

const (
	FieldComponent     = "component"
	FieldCorrelationID = "correlation_id"
)

// Logger implements auth.Logger and auth.ContextLogger
type Logger struct {
	zl zerolog.Logger
}

var _ auth.ContextLogger = (*Logger)(nil)

// New builds a logger writing to w. An unknown level falls back to info.
func New(w io.Writer, level, format string) *Logger {
	if w == nil {
		w = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if strings.ToLower(format) == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return Wrap(zl)
}

// Wrap adapts an existing zerolog logger
func Wrap(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// Named tags every entry with component
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, component).Logger()}
}

// WithContext adds the correlation id found in ctx
func (l *Logger) WithContext(ctx context.Context) auth.Logger {
	id := auth.CorrelationID(ctx)
	if id == "" {
		return l
	}
	return &Logger{zl: l.zl.With().Str(FieldCorrelationID, id).Logger()}
}

func (l *Logger) Debug(msg string, args ...any) {
	fields(l.zl.Debug(), args).Msg(msg)
}

func (l *Logger) Info(msg string, args ...any) {
	fields(l.zl.Info(), args).Msg(msg)
}

func (l *Logger) Warn(msg string, args ...any) {
	fields(l.zl.Warn(), args).Msg(msg)
}

func (l *Logger) Error(msg string, args ...any) {
	fields(l.zl.Error(), args).Msg(msg)
}

// fields adds key/value pairs to event. A dangling key is logged under
// "extra".
func fields(event *zerolog.Event, args []any) *zerolog.Event {
	if event == nil {
		return event
	}
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			event = event.Interface("extra", args[i])
			break
		}

		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}

		switch v := args[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case string:
			event = event.Str(key, v)
		case fmt.Stringer:
			event = event.Stringer(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	return event
}
