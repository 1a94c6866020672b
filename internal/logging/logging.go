// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the log level and output format ("console" or "json")
type Config struct {
	Level  string
	Format string
}

// Setup configures the global logger writing to stdout
func Setup(cfg Config) error {
	return SetupWriter(cfg, os.Stdout)
}

// SetupWriter configures the global logger writing to out.
// Loggers obtained from contexts without one fall back to the global logger.
func SetupWriter(cfg Config, out io.Writer) error {
	level := zerolog.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = out
			cw.TimeFormat = time.RFC3339
		})
	case "json":
		w = out
	default:
		return fmt.Errorf("invalid log format %q: must be 'console' or 'json'", cfg.Format)
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Str("service", "outfitlens").Logger()
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}
