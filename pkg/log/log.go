// Package log provides the structured, leveled logger used for
// construction-time diagnostics (save RAM loading, boot ROM length)
// and host startup errors. Nothing is logged while stepping: sink
// calls return no errors, and the CPU runs unassigned opcodes as
// NOPs without a message. It wraps
// logrus behind a small interface so gameboy.GameBoy never imports
// logrus directly.
package log

import "github.com/sirupsen/logrus"

// Logger is the subset of logging behavior the core depends on.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logger struct {
	l *logrus.Logger
}

// New returns a logrus-backed Logger with plain, timestamp-free text
// output.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return &logger{l: l}
}

func (l *logger) Infof(format string, args ...interface{})  { l.l.Infof(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.l.Errorf(format, args...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.l.Debugf(format, args...) }
