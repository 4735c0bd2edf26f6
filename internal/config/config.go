// Package config provides configuration loading and defaults for mainstay
// applications and the mainstayd reference daemon.
//
// Configuration is loaded from a TOML file in the application's data
// directory. The package covers daemon behavior, logging, the termination
// event stream, crash reporting, and the local control endpoint, with
// sensible defaults for all of them.
package config

//go:generate go run ../../cmd/genconfig

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mainstaykit/mainstay/internal/atomicfile"
	"github.com/mainstaykit/mainstay/internal/migrate"
	"github.com/mainstaykit/mainstay/internal/paths"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Application holds application-wide behavior settings.
	Application ApplicationConfig `toml:"application"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Events holds termination event stream settings.
	Events EventsConfig `toml:"events"`
	// Crash holds crash reporting settings.
	Crash CrashConfig `toml:"crash"`
	// Control holds local control endpoint settings.
	Control ControlConfig `toml:"control"`
}

// ApplicationConfig holds application-wide behavior settings.
type ApplicationConfig struct {
	// Daemon marks the process as a background service. A daemon keeps
	// running across interactive user logoff instead of terminating.
	Daemon bool `toml:"daemon"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File overrides the log file path. Empty means the "daemon.log" file
	// inside the data directory; relative paths are resolved against the
	// data directory.
	File string `toml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// EventsConfig holds termination event stream settings.
type EventsConfig struct {
	// Buffer is the fixed capacity of the termination event stream.
	// Zero selects the built-in default. Events arriving when the buffer
	// is full are dropped and counted.
	Buffer int `toml:"buffer"`
}

// CrashConfig holds crash reporting settings.
type CrashConfig struct {
	// Dir overrides the crash report directory. Empty means the "crash"
	// subdirectory of the data directory.
	Dir string `toml:"dir,omitempty"`
	// Keep is how many crash reports to retain; older reports beyond this
	// count are pruned after each new report. Zero disables pruning.
	Keep int `toml:"keep"`
	// Upload enables posting new crash reports to ReportURL.
	Upload bool `toml:"upload"`
	// ReportURL is the HTTP endpoint crash reports are posted to when
	// Upload is true.
	ReportURL string `toml:"report_url,omitempty"`
}

// ControlConfig holds local control endpoint settings.
type ControlConfig struct {
	// Enabled turns the control endpoint on. When off, "stop" and
	// "status" commands cannot reach the process.
	Enabled bool `toml:"enabled"`
	// Endpoint overrides the endpoint address: a socket path on POSIX
	// systems, a named pipe path on Windows. Empty selects the platform
	// default inside the data directory.
	Endpoint string `toml:"endpoint,omitempty"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Application: ApplicationConfig{
			Daemon: false,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Events: EventsConfig{
			Buffer: 8,
		},
		Crash: CrashConfig{
			Keep:   20,
			Upload: false,
		},
		Control: ControlConfig{
			Enabled: true,
		},
	}
}

// ///////////////////////////////////////////////
// Example Configuration
// ///////////////////////////////////////////////

// ExampleConfig returns a Config suitable for generating config.default.toml.
// For this project all defaults are good examples.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file at path.
// If the file doesn't exist, returns DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)
	if version > migrate.Config.CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than this build supports (%d)", version, migrate.Config.CurrentVersion)
	}

	// Apply migrations if needed
	migrated := migrate.Config.NeedsMigration(version)
	if migrated {
		// Write backup before migration
		if backupErr := os.WriteFile(path+".bak", data, 0o644); backupErr != nil {
			slog.Warn("failed to write config backup", "error", backupErr)
		}
		var migrateErr error
		data, _, migrateErr = migrate.Config.Run(data, version)
		if migrateErr != nil {
			return nil, fmt.Errorf("migrate config: %w", migrateErr)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// Re-save after migration
	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}

	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf strings.Builder
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, []byte(buf.String()), 0o644)
}

// Seed writes the embedded default config to dataDir/config.toml if no
// config file exists yet. An existing file is never touched.
func Seed(dataDir string, defaultTOML []byte) error {
	path := paths.DataDir{Root: dataDir}.Config()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := atomicfile.Write(path, defaultTOML, 0o644); err != nil {
		return fmt.Errorf("seed default config: %w", err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	if c.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer must be >= 0, got %d", c.Events.Buffer)
	}

	if c.Crash.Keep < 0 {
		return fmt.Errorf("crash.keep must be >= 0, got %d", c.Crash.Keep)
	}

	if c.Crash.Upload {
		if c.Crash.ReportURL == "" {
			return fmt.Errorf("crash.upload requires crash.report_url to be set")
		}
		u, err := url.Parse(c.Crash.ReportURL)
		if err != nil {
			return fmt.Errorf("invalid crash.report_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid crash.report_url %q: scheme must be http or https", c.Crash.ReportURL)
		}
	}

	return nil
}
