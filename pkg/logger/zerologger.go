package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZeroLogger implements Client on zerolog. The env string follows the
// APP_ENV convention: "production" logs at info and above, anything else
// includes debug.
type ZeroLogger struct {
	zlogger zerolog.Logger
}

func NewZeroLog(env string) *ZeroLogger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is NewZeroLog with an explicit sink; tests pass a buffer
// or io.Discard.
func NewWithWriter(env string, w io.Writer) *ZeroLogger {
	zlogger := zerolog.New(w).With().Timestamp().Logger()

	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return &ZeroLogger{zlogger: zlogger}
}

// withFields attaches fields using typed setters where the value type is
// known, falling back to Interface for everything else.
func (l *ZeroLogger) withFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event.Str(f.Key, v)
		case int:
			event.Int(f.Key, v)
		case int64:
			event.Int64(f.Key, v)
		case float64:
			event.Float64(f.Key, v)
		case bool:
			event.Bool(f.Key, v)
		case error:
			event.AnErr(f.Key, v)
		default:
			event.Interface(f.Key, v)
		}
	}
	return event
}

func (l *ZeroLogger) Debug(msg string, fields ...Field) {
	l.withFields(l.zlogger.Debug(), fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields ...Field) {
	l.withFields(l.zlogger.Info(), fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields ...Field) {
	l.withFields(l.zlogger.Warn(), fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, fields ...Field) {
	l.withFields(l.zlogger.Error(), fields).Msg(msg)
}
