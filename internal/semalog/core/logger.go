// Package core provides the ambient conveniences shared by every semalog
// component: a leveled Logger, the ConfigurationOption/fact-map idiom used
// to configure components, and the typed error kinds of the change algebra.
package core

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ConfigLogger is the fact key components look up to receive a shared Logger.
const ConfigLogger = "Core.Logger"

// Logger is the minimal leveled logging surface every component depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogger returns the default Logger, a logrus.Entry writing to stderr.
func NewLogger() Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
