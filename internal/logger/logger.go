// Package logger configures the process-wide zerolog instance.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger = zerolog.Nop()

// Init sets up the global logger. Debug enables debug-level output and
// raw JSON lines; otherwise a console writer at the given level is used.
// Log output goes to stderr so it never mixes with the report on stdout.
func Init(level string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if debug {
		lvl = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	logger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
}

// Get returns the configured logger.
func Get() *zerolog.Logger {
	return &logger
}
