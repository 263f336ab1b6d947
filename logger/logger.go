package logger

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New constructs a zerolog logger from level and format ("json" or
// "console") and installs it as the global logger.
func New(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	var l zerolog.Logger
	switch strings.ToLower(format) {
	case "json":
		l = zerolog.New(os.Stdout).With().Timestamp().Logger()
	case "console":
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	default:
		return zerolog.Logger{}, errors.New("unsupported log format")
	}

	zerolog.SetGlobalLevel(lvl)
	l = l.Level(lvl)
	log.Logger = l

	return l, nil
}
