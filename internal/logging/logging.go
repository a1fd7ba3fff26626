// Package logging builds the zerolog loggers used by the command line.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level. Unknown names fall
// back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a timestamped logger writing to w at the named level. The
// "json" format writes one JSON object per line; anything else writes the
// human console format.
func New(w io.Writer, level, format string) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}
