package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the application logger. Production gets JSON lines, everything
// else gets human readable text with full timestamps.
func New(level string, production bool) *logrus.Logger {
	return NewWithOutput(level, production, os.Stdout)
}

// NewWithOutput is New writing to out.
func NewWithOutput(level string, production bool, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if production {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.Warnf("unknown log level %q, falling back to info", level)
		return log
	}
	log.SetLevel(parsed)
	return log
}
