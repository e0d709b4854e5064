package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values with sensible
// defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Provider-specific defaults are handled by the adapter packages
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyAccountsDefaults(&cfg.Accounts)
	applyServiceDefaults(cfg.Services)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	// Normalize to lowercase for consistent internal representation
	cfg.Level = strings.ToLower(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets HTTP server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	// Metrics.Enabled defaults to false

	// RateLimit.RequestsPerSecond of 0 means no limiting
	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = cfg.RateLimit.RequestsPerSecond * 2
	}
}

// applyAccountsDefaults sets account store defaults.
func applyAccountsDefaults(cfg *AccountsConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}

	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	// Apply badger defaults for config file generation
	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = "/var/lib/storelink/accounts"
	}
}

// applyServiceDefaults initializes nil provider sections.
func applyServiceDefaults(services []ServiceConfig) {
	for i := range services {
		service := &services[i]

		if service.WebDAV == nil {
			service.WebDAV = make(map[string]any)
		}
		if service.S3 == nil {
			service.S3 = make(map[string]any)
		}
		if service.Memory == nil {
			service.Memory = make(map[string]any)
		}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Accounts: AccountsConfig{
			Badger: make(map[string]any),
		},
		Services: []ServiceConfig{
			{
				Name:     "owncloud",
				Provider: "webdav",
				WebDAV: map[string]any{
					"external_api_url": "https://cloud.example.com/remote.php/dav/files/user/",
				},
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
