package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "SEAM_"

// Load resolves the configuration for the given file path. A missing
// file is not an error; defaults and environment overrides still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, &ParseError{Path: path, Err: err}
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays SEAM_* environment variables onto the configuration.
// Empty values are treated as unset.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(EnvPrefix + "TAB_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.View.TabWidth = n
		}
	}
	if v := os.Getenv(EnvPrefix + "LINE_NUMBERS"); v != "" {
		if b, ok := parseBool(v); ok {
			cfg.View.LineNumbers = b
		}
	}
	if v := os.Getenv(EnvPrefix + "SYNC_SCROLL"); v != "" {
		if b, ok := parseBool(v); ok {
			cfg.View.SyncScroll = b
		}
	}
	if v := os.Getenv(EnvPrefix + "RECOMPUTE_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Diff.RecomputeDebounce = d
		}
	}
}

func parseBool(s string) (value, ok bool) {
	switch s {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// ParseError wraps a TOML syntax error with the file it came from.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
