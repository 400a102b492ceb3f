// Package logging builds the process logger. It is created once in main and
// passed as *zerolog.Logger to everything that logs.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w. format "json" emits one JSON object per
// line; anything else uses the human-readable console writer. An unknown
// level falls back to info.
func New(w io.Writer, format, level string) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "educompanion").Logger()
}

// Nop returns a logger that discards everything; used by tests.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
