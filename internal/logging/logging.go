package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger writing human-readable output to w.
// Debug lowers the level filter from info to debug.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}
