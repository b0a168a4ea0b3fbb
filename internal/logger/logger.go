// Package logger builds the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger on stdout at the given level ("trace", "debug",
// "info", "warn", "error"). Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		l.SetLevel(logrus.TraceLevel)
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
