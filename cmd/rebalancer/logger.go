package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds a structured logger writing to stdout, honoring
// cfg.LogLevel (debug, info, warn, error).
func newLogger(level string) zerolog.Logger {
	parsed := zerolog.InfoLevel
	switch level {
	case "debug":
		parsed = zerolog.DebugLevel
	case "warn":
		parsed = zerolog.WarnLevel
	case "error":
		parsed = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()
}
