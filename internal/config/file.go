package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML decoding. Durations are strings
// so the file can say "100ms" or "10s".
type fileConfig struct {
	LockPath      *string `yaml:"lockPath"`
	MaxAttempts   *int    `yaml:"maxAttempts"`
	PollInterval  *string `yaml:"pollInterval"`
	GracePeriod   *string `yaml:"gracePeriod"`
	UnlockTimeout *string `yaml:"unlockTimeout"`

	RetryDelay  *string  `yaml:"retryDelay"`
	RetryJitter *float64 `yaml:"retryJitter"`

	MetricsAddr *string `yaml:"metricsAddr"`
	Verbose     *bool   `yaml:"verbose"`
	LogFormat   *string `yaml:"logFormat"`
	LogFile     *string `yaml:"logFile"`
}

// LoadFile applies the YAML file at path over cfg. Absent keys keep
// their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.LockPath != nil {
		cfg.LockPath = *fc.LockPath
	}
	if fc.MaxAttempts != nil {
		cfg.MaxAttempts = *fc.MaxAttempts
	}
	if err := applyDuration(&cfg.PollInterval, fc.PollInterval, "pollInterval"); err != nil {
		return err
	}
	if err := applyDuration(&cfg.GracePeriod, fc.GracePeriod, "gracePeriod"); err != nil {
		return err
	}
	if err := applyDuration(&cfg.UnlockTimeout, fc.UnlockTimeout, "unlockTimeout"); err != nil {
		return err
	}
	if err := applyDuration(&cfg.RetryDelay, fc.RetryDelay, "retryDelay"); err != nil {
		return err
	}
	if fc.RetryJitter != nil {
		cfg.RetryJitter = *fc.RetryJitter
	}
	if fc.MetricsAddr != nil {
		cfg.MetricsAddr = *fc.MetricsAddr
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}

	return nil
}

func applyDuration(dst *time.Duration, src *string, field string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("config field %s: %w", field, err)
	}
	*dst = d
	return nil
}
