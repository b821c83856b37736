// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Log is the package-level diagnostic logger. It defaults to a console writer
// on stderr but may be redirected with SetOutput. Tests can mute it.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetOutput rebuilds the package logger to write to w.
func SetOutput(w io.Writer) {
	Log = zerolog.New(w).With().Timestamp().Logger()
}

// Mute silences the package logger. Intended for tests.
func Mute() {
	Log = zerolog.Nop()
}
