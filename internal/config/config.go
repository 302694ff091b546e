// Package config holds interpreter constants and the gcl.yaml configuration.
//
// A configuration file is optional. When present it tunes the call-depth
// limit, logging, the statement transcript and diagnostic colouring:
//
//	max_call_depth: 2048
//	log_level: debug
//	log_format: json
//	transcript: session.db
//	color: never
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level gcl.yaml configuration.
type Config struct {
	// MaxCallDepth is the deepest frame stack a program may build.
	// Defaults to DefaultMaxCallDepth.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `yaml:"log_level,omitempty"`

	// LogFormat is "text" or "json". Defaults to text.
	LogFormat string `yaml:"log_format,omitempty"`

	// Transcript is the path of a SQLite file that records every executed
	// statement. Empty disables the transcript. Relative paths are resolved
	// against the directory of the configuration file.
	Transcript string `yaml:"transcript,omitempty"`

	// Color selects coloured diagnostics: auto, always or never.
	Color string `yaml:"color,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a gcl.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	if cfg.Transcript != "" && !filepath.IsAbs(cfg.Transcript) {
		cfg.Transcript = filepath.Join(filepath.Dir(path), cfg.Transcript)
	}
	return cfg, nil
}

// ParseConfig parses gcl.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for gcl.yaml starting from dir and walking up
// to parent directories. Returns "" and nil error if nothing is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("%s: max_call_depth must not be negative", path)
	}
	if c.MaxCallDepth > HardMaxCallDepth {
		return fmt.Errorf("%s: max_call_depth %d exceeds the limit of %d", path, c.MaxCallDepth, HardMaxCallDepth)
	}
	if c.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return fmt.Errorf("%s: log_level %q: %w", path, c.LogLevel, err)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%s: log_format must be %q or %q, got %q", path, LogFormatText, LogFormatJSON, c.LogFormat)
	}
	switch strings.ToLower(c.Color) {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = DefaultMaxCallDepth
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	c.Color = strings.ToLower(c.Color)
	if c.Color == "" {
		c.Color = ColorAuto
	}
}

// Level returns the configured slog level, warn when unparsable.
func (c *Config) Level() slog.Level {
	lvl := slog.LevelWarn
	if c.LogLevel != "" {
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return slog.LevelWarn
		}
	}
	return lvl
}

// Logger builds the interpreter logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
