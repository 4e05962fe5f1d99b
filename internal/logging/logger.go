package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/phobrla/openinsafari/internal/config"
)

// NewLogger creates a structured zerolog.Logger writing to stdout, where
// the service supervisor collects it. Verbose mode forces debug level.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "relayd").
		Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	return logger.Level(level)
}
