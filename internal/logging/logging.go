// Package logging builds the process-wide zerolog.Logger, following
// Protei_Monitoring/bin/internal/logger's console+file writer split
// with a lumberjack-backed rotating file sink.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how log lines are written.
type Config struct {
	Level      string // debug, info, warn, error
	Path       string // rotating file sink path; empty means stdout only
	Console    bool   // human-readable console writer instead of JSON
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a zerolog.Logger per cfg. Command-level detail (individual
// CLI lines) logs at debug; mode transitions, timeouts, and refresh
// outcomes log at info/warn, per SPEC_FULL's ambient logging section.
// Credentials must never be passed as log fields — the command
// dispatcher masks "password" arguments in any command text it logs, and
// the bind controller does not log commands.
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var writer io.Writer = os.Stdout
	if cfg.Path != "" {
		writer = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}

	var logger zerolog.Logger
	if cfg.Console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(writer).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
