package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete storelink server configuration.
//
// This structure captures all configurable aspects of the server including:
//   - Logging configuration
//   - HTTP server settings and metrics exposure
//   - Account store selection and configuration (store-specific)
//   - External storage service definitions
//
// Configuration sources (in order of precedence):
//  1. Environment variables (STORELINK_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Service Configuration Pattern:
// Each provider defines its own configuration type. A ServiceConfig contains
// provider-specific sections (webdav, s3, memory) and only the section
// matching the selected provider is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains HTTP server settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Accounts specifies the account store type and type-specific
	// configuration
	Accounts AccountsConfig `mapstructure:"accounts" yaml:"accounts"`

	// Services defines the external storage services accounts can be
	// authorized against
	Services []ServiceConfig `mapstructure:"services" yaml:"services" validate:"dive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: debug, info, warn, error (case-insensitive)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the host:port the HTTP API binds to
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address" validate:"required"`

	// ReadTimeout bounds reading of incoming requests
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"required,gt=0"`

	// WriteTimeout bounds writing of responses
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"required,gt=0"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics controls Prometheus metrics exposure
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// RateLimit throttles incoming API requests
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig controls request throttling on the HTTP API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate
	// A value of 0 disables rate limiting
	RequestsPerSecond uint `mapstructure:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the number of requests that may exceed the sustained rate
	// momentarily; defaults to twice the sustained rate
	Burst uint `mapstructure:"burst" yaml:"burst"`
}

// MetricsConfig controls Prometheus metrics collection and exposure.
type MetricsConfig struct {
	// Enabled turns on metrics collection and the /metrics endpoint
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AccountsConfig specifies account store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type AccountsConfig struct {
	// Type specifies which account store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`
}

// ServiceConfig defines a single named external storage service.
type ServiceConfig struct {
	// Name uniquely identifies the service; accounts reference it
	Name string `mapstructure:"name" yaml:"name" validate:"required"`

	// Provider specifies which adapter implementation backs the service
	// Valid values: webdav, s3, memory
	Provider string `mapstructure:"provider" yaml:"provider" validate:"required,oneof=webdav s3 memory"`

	// WebDAV contains WebDAV-specific configuration
	// Only used when Provider = "webdav"
	WebDAV map[string]any `mapstructure:"webdav" yaml:"webdav"`

	// S3 contains S3-specific configuration
	// Only used when Provider = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3"`

	// Memory contains memory-provider configuration
	// Only used when Provider = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (STORELINK_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use STORELINK_ prefix and underscores
	// Example: STORELINK_LOGGING_LEVEL=debug
	v.SetEnvPrefix("STORELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/storelink/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "storelink")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "storelink")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
