// Package logging wires zerolog to a file. The TUI owns the terminal, so
// structured logs never go to stdout/stderr.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/perimetra/detwatch/internal/config"
)

// New builds a logger from the log configuration. With an empty file path it
// returns a disabled logger and a nil closer. The caller closes the returned
// closer on shutdown.
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return zerolog.Nop(), nil, nil
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging: open %s: %w", cfg.File, err)
	}

	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, f, nil
}
