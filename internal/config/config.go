// Package config provides configuration management for uscfprep using
// Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with USCFPREP_ prefix, and validation. It manages the
// calculation document location, the staging directory input decks are
// written into, logging, and the watch loop of prepare --watch.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/logging"
)

type Config struct {
	Document DocumentConfig `yaml:"document"`
	Staging  StagingConfig  `yaml:"staging"`
	Plan     PlanConfig     `yaml:"plan"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

type DocumentConfig struct {
	Path string `yaml:"path"`
}

type StagingConfig struct {
	Dir string `yaml:"dir"`
}

type PlanConfig struct {
	// File receives the submission descriptor; empty means stdout.
	File string `yaml:"file"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

type WatchConfig struct {
	DebounceMs int      `yaml:"debounce_ms"`
	Paths      []string `yaml:"paths"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle watch paths set via viper (workaround for viper slice handling)
	if viper.IsSet("watch.paths") && len(config.Watch.Paths) == 0 {
		paths := viper.GetStringSlice("watch.paths")
		if len(paths) > 0 {
			config.Watch.Paths = paths
		}
	}

	// Handle logging settings set via viper (workaround for viper bool handling)
	if viper.IsSet("logging.add_source") {
		config.Logging.AddSource = viper.GetBool("logging.add_source")
	}

	// Handle debounce set via viper (workaround for viper key name handling)
	if viper.IsSet("watch.debounce_ms") {
		config.Watch.DebounceMs = viper.GetInt("watch.debounce_ms")
	}

	// Apply default values for DocumentConfig if not set
	if config.Document.Path == "" {
		config.Document.Path = "calc.yml"
	}

	// Apply default values for StagingConfig if not set
	if config.Staging.Dir == "" {
		config.Staging.Dir = "./staging"
	}

	// Apply default values for LoggingConfig if not set
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	// Apply default values for WatchConfig if not set
	if !viper.IsSet("watch.debounce_ms") && config.Watch.DebounceMs == 0 {
		config.Watch.DebounceMs = 300
	}

	// Validate configuration values
	if err := validateConfig(&config); err != nil {
		return nil, errors.Config("invalid configuration").WithCause(err)
	}

	return &config, nil
}

// LoggerConfig translates the logging section into the logger's own
// configuration type.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Logging.Level)
	cfg.Format = c.Logging.Format
	cfg.AddSource = c.Logging.AddSource
	return cfg
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateDocumentConfig(&config.Document); err != nil {
		return fmt.Errorf("document config: %w", err)
	}

	if err := validateStagingConfig(&config.Staging); err != nil {
		return fmt.Errorf("staging config: %w", err)
	}

	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	return nil
}

// validateDocumentConfig validates the calculation document location
func validateDocumentConfig(config *DocumentConfig) error {
	if err := validatePath(config.Path); err != nil {
		return fmt.Errorf("invalid document path '%s': %w", config.Path, err)
	}

	return nil
}

// validateStagingConfig validates the staging directory
func validateStagingConfig(config *StagingConfig) error {
	cleanPath := filepath.Clean(config.Dir)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("staging dir contains path traversal: %s", config.Dir)
	}

	if err := validatePath(config.Dir); err != nil {
		return fmt.Errorf("invalid staging dir '%s': %w", config.Dir, err)
	}

	return nil
}

// validateLoggingConfig validates logging level and format values
func validateLoggingConfig(config *LoggingConfig) error {
	switch config.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", config.Level)
	}

	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", config.Format)
	}

	return nil
}

// validateWatchConfig validates the watch loop settings
func validateWatchConfig(config *WatchConfig) error {
	if config.DebounceMs < 0 || config.DebounceMs > 60000 {
		return fmt.Errorf("debounce_ms %d is not in valid range 0-60000", config.DebounceMs)
	}

	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid watch path '%s': %w", path, err)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	for _, r := range cleanPath {
		if r < 0x20 {
			return fmt.Errorf("path contains control character")
		}
	}

	return nil
}
