package compare

import "docdiff/log"

type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

type ZeroLogger struct {
	Logger log.Logger
}

func (l *ZeroLogger) Info(format string, args ...any) {
	l.Logger.Info().Msgf(format, args...)
}

func (l *ZeroLogger) Warn(format string, args ...any) {
	l.Logger.Warn().Msgf(format, args...)
}

// DummyLogger swallows extraction chatter in tests.
type DummyLogger struct{}

func (d *DummyLogger) Info(format string, args ...any) {}

func (d *DummyLogger) Warn(format string, args ...any) {}
