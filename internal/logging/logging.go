package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ALT-F4-LLC/tracker/internal/config"
)

// New builds the process logger. "dev" writes colored console lines,
// anything else writes JSON. Logs go to stderr so they never mix with
// command output on stdout.
func New(cfg config.Log) zerolog.Logger {
	return NewWriter(os.Stderr, cfg)
}

// NewWriter is New with an explicit destination.
func NewWriter(out io.Writer, cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Env == "dev" {
		console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(console).Level(level).With().Timestamp().Logger()
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
