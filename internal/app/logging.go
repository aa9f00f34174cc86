package app

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/seamtext/seam/internal/config"
)

// NewLogger builds the process logger from configuration. The returned
// closer owns the log file; callers close it on shutdown. With no file
// configured, or level "off", the logger discards everything: the
// terminal UI owns stderr while a session is running.
func NewLogger(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	if cfg.Level == "off" || cfg.File == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
