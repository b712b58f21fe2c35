// Package logging wraps logr.Logger with the three verbosity levels this
// module's packages actually use, plus a colorized, terminal-aware sink
// for CLI use. Grounded on pkg/logging in the teacher.
package logging

import (
	"github.com/go-logr/logr"
)

const (
	LevelInfo  = 0
	LevelDebug = 1
	LevelTrace = 2
)

// Logger wraps logr.Logger, narrowing its API to the four verbs this
// module's packages call.
type Logger struct {
	log logr.Logger
}

// NewLogger wraps an existing logr.Logger. A logger with no sink set is
// replaced with a discarding logger.
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger discards everything. Library code defaults to this;
// CLI entry points replace it with a SimpleLogSink-backed logger.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(LevelDebug).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(LevelTrace).Info(msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}
