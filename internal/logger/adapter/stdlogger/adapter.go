// Package stdlogger adapts zerolog to libraries expecting a printf style logger.
package stdlogger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StdLogger wraps the global zerolog logger behind printf style methods.
type StdLogger struct {
	logger zerolog.Logger
}

// New returns a StdLogger backed by the global zerolog logger.
// Call logger.Init before use, otherwise output goes to the zerolog default.
func New() *StdLogger {
	return &StdLogger{logger: log.Logger}
}

// Printf logs at info level. Satisfies gorm's logger.Writer among others.
func (l *StdLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

// Debugf logs at debug level.
func (l *StdLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}

// Infof logs at info level.
func (l *StdLogger) Infof(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

// Warningf logs at warn level.
func (l *StdLogger) Warningf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

// Errorf logs at error level.
func (l *StdLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}
