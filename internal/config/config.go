// Package config provides configuration management for go-batch-runner.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for the supervisor.
type Config struct {
	// Supervision
	LockPath      string        `json:"lock_path"`
	MaxAttempts   int           `json:"max_attempts"`
	PollInterval  time.Duration `json:"poll_interval"`
	GracePeriod   time.Duration `json:"grace_period"`
	UnlockTimeout time.Duration `json:"unlock_timeout"`

	// Retry policy
	RetryDelay  time.Duration `json:"retry_delay"` // 0 = immediate
	RetryJitter float64       `json:"retry_jitter"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	LogFile     string `json:"log_file"`   // supervisor's own rotated log

	// Diagnostic modes
	PrintCmd bool `json:"print_cmd"`

	// Config file
	ConfigFile string `json:"-"`

	// Command is the supervised executable and its arguments,
	// taken from the positional arguments after the flags.
	Command []string `json:"command"`
}

// DefaultConfig returns a Config with the reference defaults. The
// supervision constants were tuned empirically in the original
// pipeline and are kept configurable but defaulted identically.
func DefaultConfig() *Config {
	return &Config{
		LockPath:      filepath.Join(os.TempDir(), "go-batch-runner.pid"),
		MaxAttempts:   25,
		PollInterval:  100 * time.Millisecond,
		GracePeriod:   10 * time.Second,
		UnlockTimeout: 30 * time.Second,

		RetryDelay:  0,
		RetryJitter: 0.4,

		MetricsAddr: "", // disabled
		Verbose:     false,
		LogFormat:   "json",
	}
}
