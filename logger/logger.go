// Package logger builds the zerolog loggers used by the service and CLI
// entry points. The numerical packages stay silent; logging happens at the
// edges.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing to stderr at the given level. Format is
// "console" for human-readable output; anything else means JSON.
func New(level, format string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer = os.Stderr
	if format == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).Level(parsed).With().Timestamp().Logger(), nil
}
