// Package logging builds the service-wide zerolog logger.
//
// JSON output is the production default; "console" gives human-readable
// output for local development. Components receive logger values from main
// rather than reaching for a package-level global, so tests can pass
// zerolog.Nop().
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger configured from the LOG_LEVEL / LOG_FORMAT values.
// Unknown levels fall back to info rather than failing startup.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if strings.EqualFold(format, "console") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out})
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
