package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

var validOutputFormats = map[string]bool{
	"yaml":    true,
	"yml":     true,
	"tar.gz":  true,
	"tgz":     true,
	"zip":     true,
}

// Validate validates the entire configuration.
func Validate(cfg *Config) error {
	var errors ValidationErrors

	if !validOutputFormats[cfg.OutputFormat] {
		errors = append(errors, ValidationError{
			Field:   "output_format",
			Value:   cfg.OutputFormat,
			Message: "must be one of yaml, yml, tar.gz, tgz, zip",
		})
	}

	if strings.TrimSpace(cfg.ServiceAccountName) == "" {
		errors = append(errors, ValidationError{
			Field:   "service_account_name",
			Value:   cfg.ServiceAccountName,
			Message: "cannot be empty",
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
