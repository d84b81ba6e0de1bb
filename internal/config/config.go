// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

// Package config loads host configuration from a YAML file merged with
// command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/modhost/modhost/internal/xdg"
)

// Config holds everything the run command needs.
type Config struct {
	// ScriptsDir is the directory scanned for script subdirectories.
	ScriptsDir string `koanf:"scripts_dir"`

	// MetricsAddr is the observability HTTP listen address. Empty disables
	// the server.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level"`

	// TickInterval is the period of the host tick loop.
	TickInterval time.Duration `koanf:"tick_interval"`

	// Callbacks are the named callbacks created at startup, before any
	// script loads. Scripts can only hook callbacks that exist.
	Callbacks []string `koanf:"callbacks"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		ScriptsDir:   xdg.ScriptsDir(),
		MetricsAddr:  "127.0.0.1:9100",
		LogFormat:    "json",
		LogLevel:     "info",
		TickInterval: time.Second,
		Callbacks:    []string{"tick"},
	}
}

// Load builds a Config from defaults, an optional YAML file, and an
// optional flag set, in that precedence order.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.In("config").With("path", path).Hint("failed to load config file").Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.In("config").Hint("failed to merge flags").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.In("config").Hint("failed to unmarshal config").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ScriptsDir == "" {
		return fmt.Errorf("scripts_dir is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if len(c.Callbacks) == 0 {
		return fmt.Errorf("at least one callback is required")
	}
	return nil
}
