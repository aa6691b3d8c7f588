// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the dashboard.
//
// Configuration is optional: the dashboard runs with built-in defaults
// plus the transport environment variables. A config file may be named
// by the DEVDASH_CONFIG environment variable or the --config flag.
//
// Precedence, lowest to highest: built-in defaults, config file,
// process environment. The environment layer exists because the dev
// server hands the transport paths to child processes through
// FRONTMCP_SOCKET_PATH and FRONTMCP_EVENT_PIPE; those must win over
// anything stale in a file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config is the full dashboard configuration.
type Config struct {
	// Transport selects and locates the event source.
	Transport TransportConfig `yaml:"transport"`

	// UI configures rendering behavior.
	UI UIConfig `yaml:"ui"`

	// Capture configures session recording and snapshot export.
	Capture CaptureConfig `yaml:"capture"`

	// Log configures the dashboard's own diagnostics.
	Log LogConfig `yaml:"log"`
}

// TransportConfig locates the event source. When both paths are set
// the socket wins; exactly one transport is active per process.
type TransportConfig struct {
	// SocketPath is the dev server's Unix socket. Preferred,
	// bidirectional.
	SocketPath string `yaml:"socket_path"`

	// PipePath is the legacy append-only event file. Outbound-only.
	PipePath string `yaml:"pipe_path"`
}

// UIConfig configures rendering behavior.
type UIConfig struct {
	// Theme selects the color theme. Values: "dark", "light".
	// Default: dark.
	Theme string `yaml:"theme"`

	// Mouse enables mouse support (wheel scrolling, click to select).
	// Default: true.
	Mouse bool `yaml:"mouse"`
}

// CaptureConfig configures session recording and snapshot export.
type CaptureConfig struct {
	// Dir is where capture files and exported snapshots are written.
	// Default: ${HOME}/.cache/devdash
	Dir string `yaml:"dir"`

	// Compression selects the capture frame compression.
	// Values: "none", "lz4", "zstd". Default: zstd.
	Compression string `yaml:"compression"`
}

// LogConfig configures the dashboard's own diagnostics. The terminal
// is owned by the UI, so file logging is the only non-UI output.
type LogConfig struct {
	// File receives diagnostic output when set. Empty disables file
	// logging; diagnostics then appear only in the in-UI log overlay.
	File string `yaml:"file"`

	// Level is the minimum level: "debug", "info", "warn", "error".
	// Default: info.
	Level string `yaml:"level"`
}

// envOverrides is the process-environment layer, applied after the
// file. The FRONTMCP_* variables are set by the dev server itself.
type envOverrides struct {
	SocketPath string `env:"FRONTMCP_SOCKET_PATH"`
	PipePath   string `env:"FRONTMCP_EVENT_PIPE"`
	LogFile    string `env:"DEVDASH_LOG_FILE"`
	LogLevel   string `env:"DEVDASH_LOG_LEVEL"`
}

// Default returns the built-in configuration. Unlike the transport
// paths, these values are complete enough to run without any file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		UI: UIConfig{
			Theme: "dark",
			Mouse: true,
		},
		Capture: CaptureConfig{
			Dir:         filepath.Join(homeDir, ".cache", "devdash"),
			Compression: "zstd",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the optional file named
// by DEVDASH_CONFIG, and the process environment.
func Load() (*Config, error) {
	path := os.Getenv("DEVDASH_CONFIG")
	if path == "" {
		cfg := Default()
		if err := cfg.applyEnvironment(); err != nil {
			return nil, err
		}
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile builds the configuration from defaults, the given file, and
// the process environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironment overlays the process environment on the config.
func (c *Config) applyEnvironment() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.SocketPath != "" {
		c.Transport.SocketPath = env.SocketPath
	}
	if env.PipePath != "" {
		c.Transport.PipePath = env.PipePath
	}
	if env.LogFile != "" {
		c.Log.File = env.LogFile
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Transport.SocketPath = expandVars(c.Transport.SocketPath, vars)
	c.Transport.PipePath = expandVars(c.Transport.PipePath, vars)
	c.Capture.Dir = expandVars(c.Capture.Dir, vars)
	c.Log.File = expandVars(c.Log.File, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, fmt.Errorf("ui.theme must be dark or light, got %q", c.UI.Theme))
	}

	compressions := []string{"none", "lz4", "zstd"}
	if !contains(compressions, c.Capture.Compression) {
		errs = append(errs, fmt.Errorf("capture.compression must be one of %v, got %q", compressions, c.Capture.Compression))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", levels, c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
