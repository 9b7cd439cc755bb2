// Package logging builds the structured logger used across a run.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New builds a logger writing to w. Console mode renders human readable
// lines; otherwise each entry is one JSON object.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	if strings.TrimSpace(level) == "" {
		level = "warn"
	}
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	writer := w
	if console {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(writer).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("service", "polyglot").
		Logger()

	return logger, nil
}

// WithRun tags every entry of a run with a fresh run id
func WithRun(logger zerolog.Logger) (zerolog.Logger, string) {
	id := uuid.NewString()
	return logger.With().Str("run_id", id).Logger(), id
}
