package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrInvalidLogLevel is returned for a level zerolog does not know.
	ErrInvalidLogLevel = errors.New("config: invalid log level")
	// ErrInvalidTabWidth is returned for a tab width outside 1..16.
	ErrInvalidTabWidth = errors.New("config: tab width must be between 1 and 16")
	// ErrInvalidDebounce is returned for a negative recompute debounce.
	ErrInvalidDebounce = errors.New("config: recompute debounce must not be negative")
)

// Config is the resolved configuration for a seam session.
type Config struct {
	Log  LogConfig  `toml:"log"`
	View ViewConfig `toml:"view"`
	Diff DiffConfig `toml:"diff"`
}

// LogConfig controls the structured log output.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, or off.
	Level string `toml:"level"`
	// File receives the log stream. Empty disables logging to disk;
	// the terminal UI owns the screen, so there is no console sink.
	File string `toml:"file"`
}

// ViewConfig controls how the side-by-side view renders.
type ViewConfig struct {
	TabWidth    int  `toml:"tab_width"`
	LineNumbers bool `toml:"line_numbers"`
	// SyncScroll links the two panes through their alignment anchors.
	SyncScroll bool `toml:"sync_scroll"`
}

// DiffConfig controls realignment behavior.
type DiffConfig struct {
	// RecomputeDebounce is how long edits must be quiet before dirty
	// chunks are re-diffed.
	RecomputeDebounce time.Duration `toml:"recompute_debounce"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		View: ViewConfig{
			TabWidth:    4,
			LineNumbers: true,
			SyncScroll:  true,
		},
		Diff: DiffConfig{
			RecomputeDebounce: 150 * time.Millisecond,
		},
	}
}

// Validate checks the configuration for values no component can accept.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if c.View.TabWidth < 1 || c.View.TabWidth > 16 {
		return fmt.Errorf("%w: %d", ErrInvalidTabWidth, c.View.TabWidth)
	}
	if c.Diff.RecomputeDebounce < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Diff.RecomputeDebounce)
	}
	return nil
}

// DefaultPath returns the conventional config file location, or an empty
// string when no home directory is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "seam", "config.toml")
}
