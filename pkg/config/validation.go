package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// Validate service names are unique
	names := make(map[string]bool)
	for i, service := range cfg.Services {
		if names[service.Name] {
			return fmt.Errorf("services[%d]: duplicate service name %q", i, service.Name)
		}
		names[service.Name] = true
	}

	// Validate the provider section required by each service
	for i, service := range cfg.Services {
		if service.Provider == "webdav" {
			url, _ := service.WebDAV["external_api_url"].(string)
			if url == "" {
				return fmt.Errorf("services[%d] %q: webdav.external_api_url is required", i, service.Name)
			}
		}
		if service.Provider == "s3" {
			bucket, _ := service.S3["bucket"].(string)
			if bucket == "" {
				return fmt.Errorf("services[%d] %q: s3.bucket is required", i, service.Name)
			}
			region, _ := service.S3["region"].(string)
			if region == "" {
				return fmt.Errorf("services[%d] %q: s3.region is required", i, service.Name)
			}
		}
	}

	// Validate badger account store has a path
	if cfg.Accounts.Type == "badger" {
		path, _ := cfg.Accounts.Badger["db_path"].(string)
		if path == "" {
			return fmt.Errorf("accounts: badger.db_path is required")
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
