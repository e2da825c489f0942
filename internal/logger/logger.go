// Package logger provides structured logging for the suggestion engine.
package logger

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger with a component field.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger writing to output at the given level. Unknown
// levels fall back to warn. A nil output discards everything, which is
// the right default for a library embedded in a host editor.
func New(level string, output io.Writer) *Logger {
	log := logrus.New()
	if output == nil {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(output)
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	log.SetLevel(lvl)

	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})

	return &Logger{entry: logrus.NewEntry(log)}
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return New("panic", nil)
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{entry: l.entry.WithField("component", name)}
}

// WithField returns a logger with an extra field attached.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

// Infof logs an info message.
func (l *Logger) Infof(format string, args ...any) {
	l.entry.Infof(format, args...)
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}
