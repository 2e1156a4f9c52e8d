package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Command) == 0 {
		errs = append(errs, ValidationError{
			Field:   "command",
			Message: "supervised command is required (pass it after the flags)",
		})
	}

	if cfg.LockPath == "" {
		errs = append(errs, ValidationError{
			Field:   "lock_file",
			Message: "must not be empty",
		})
	}

	if cfg.MaxAttempts < 1 {
		errs = append(errs, ValidationError{
			Field:   "max_attempts",
			Message: "must be at least 1",
		})
	}

	if cfg.PollInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "poll_interval",
			Message: "must be positive",
		})
	}

	if cfg.GracePeriod < 0 {
		errs = append(errs, ValidationError{
			Field:   "grace_period",
			Message: "must not be negative",
		})
	}

	if cfg.UnlockTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "unlock_timeout",
			Message: "must be positive",
		})
	}

	if cfg.RetryDelay < 0 {
		errs = append(errs, ValidationError{
			Field:   "retry_delay",
			Message: "must not be negative",
		})
	}

	if cfg.RetryJitter < 0 || cfg.RetryJitter > 1 {
		errs = append(errs, ValidationError{
			Field:   "retry_jitter",
			Message: fmt.Sprintf("must be in [0, 1] (got %v)", cfg.RetryJitter),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
