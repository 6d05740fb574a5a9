package log

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/statgo/pkg/errors"
)

// zerologLogger is the default Logger implementation backed by zerolog.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a Logger that writes structured JSON records to w.
func NewZerologLogger(w io.Writer) Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &zerologLogger{logger: zl}
}

// NewZerologLoggerWithLevel creates a Logger with a minimum level filter.
func NewZerologLoggerWithLevel(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{logger: zl}
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), fields).Msg(msg)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), fields).Msg(msg)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), fields).Msg(msg)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	z.emit(z.logger.Error(), fields).Msg(msg)
}

func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

// emit appends key-value pairs to the event. Error values and structured
// error types carrying MarshalZerologObject are given their zerolog-native
// representation; a bare error in an odd position is logged under "error".
func (z *zerologLogger) emit(ev *zerolog.Event, fields []any) *zerolog.Event {
	i := 0
	for i < len(fields) {
		if err, ok := fields[i].(error); ok {
			if obj, isObj := fields[i].(zerolog.LogObjectMarshaler); isObj {
				ev = ev.EmbedObject(obj)
			} else {
				ev = ev.Err(err)
			}
			i++
			continue
		}
		if i+1 >= len(fields) {
			break
		}
		key, ok := fields[i].(string)
		if !ok {
			i += 2
			continue
		}
		ev = ev.Interface(key, fields[i+1])
		i += 2
	}
	return ev
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// InstallWarningBridge routes library warnings (ConvergenceWarning etc.) to a
// zerolog writer instead of the default log.Printf handler. Structured warning
// types are embedded as zerolog objects.
func InstallWarningBridge(w io.Writer) {
	zl := zerolog.New(w).With().Timestamp().Logger()
	errors.SetZerologWarnFunc(func(warning error) {
		ev := zl.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(obj)
		}
		ev.Msg(warning.Error())
	})
}
