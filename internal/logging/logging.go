// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options control logger construction.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// JSON switches from text to JSON output.
	JSON bool
	// Output overrides the destination; nil keeps stderr.
	Output io.Writer
}

// New builds a configured logger. Unknown levels fall back to info.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if opts.Output != nil {
		log.SetOutput(opts.Output)
	}
	return log
}
