// Package logging configures the zerolog loggers used by the keygen CLI
// and the process-level binding surface.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console-rendered logger writing to stderr, timestamped to
// the second.
func New() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// NewLevel is New with an explicit minimum level, used by bindings.InitLogger.
func NewLevel(level zerolog.Level) zerolog.Logger {
	return New().Level(level)
}
