// Wraps zerolog logger, ensuring the timestamp goes in the beginning.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var logger zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.DurationFieldInteger = true
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger = zerolog.New(os.Stderr).With().Stack().Logger()
}

func Info() *zerolog.Event {
	return logger.Info().Timestamp()
}

func Warn() *zerolog.Event {
	return logger.Warn().Timestamp()
}

func Error() *zerolog.Event {
	return logger.Error().Timestamp()
}

// Logger is accepted by code that can run both in a request and in a background task.
type Logger interface {
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

// BackgroundLogger tags every event with the name of the task it came from.
type BackgroundLogger struct {
	TaskName string
}

func (l *BackgroundLogger) Info() *zerolog.Event {
	return l.common(Info())
}

func (l *BackgroundLogger) Warn() *zerolog.Event {
	return l.common(Warn())
}

func (l *BackgroundLogger) Error() *zerolog.Event {
	return l.common(Error())
}

func (l *BackgroundLogger) common(event *zerolog.Event) *zerolog.Event {
	if l.TaskName != "" {
		event = event.Str("task", l.TaskName)
	}
	return event
}
