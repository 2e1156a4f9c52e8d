package config

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses command-line flags and returns a Config. The
// supervised command follows the flags, conventionally after "--":
//
//	go-batch-runner [flags] -- /opt/editor -batchmode -logFile /tmp/build.log ...
func ParseFlags() (*Config, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*Config, error) {
	cfg := DefaultConfig()

	fs := newFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A config file supplies defaults; explicit flags win, so re-parse
	// the command line over the file-loaded config.
	if cfg.ConfigFile != "" {
		fileCfg := DefaultConfig()
		if err := LoadFile(cfg.ConfigFile, fileCfg); err != nil {
			return nil, err
		}
		cfg = fileCfg
		fs = newFlagSet(cfg)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	cfg.Command = fs.Args()
	return cfg, nil
}

// newFlagSet registers all flags bound to cfg.
func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("go-batch-runner", flag.ContinueOnError)

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `go-batch-runner - batch process supervision with log mirroring and flaky-crash retry

Usage:
  go-batch-runner [flags] -- <executable> <args...>

The command must include a -logFile <path> pair; the supervisor mirrors
that file to stdout in real time and retries known flaky crashes.

Supervision Flags:
`)
		printFlags(fs, "lock-file", "max-attempts", "poll-interval", "grace-period", "unlock-timeout")
		fmt.Fprintf(fs.Output(), "\nRetry Policy:\n")
		printFlags(fs, "retry-delay", "retry-jitter")
		fmt.Fprintf(fs.Output(), "\nObservability:\n")
		printFlags(fs, "metrics", "v", "log-format", "log-file")
		fmt.Fprintf(fs.Output(), "\nDiagnostics:\n")
		printFlags(fs, "print-cmd", "config")
		fmt.Fprintf(fs.Output(), `
Examples:
  # Supervise a batch build
  go-batch-runner -- /opt/editor -batchmode -nographics -logFile /tmp/build.log -quit

  # Expose metrics while the build runs
  go-batch-runner -metrics 0.0.0.0:17092 -- /opt/editor -batchmode -logFile /tmp/build.log

`)
	}

	// Supervision
	fs.StringVar(&cfg.LockPath, "lock-file", cfg.LockPath, "Path of the PID lock file")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Maximum launch attempts for flaky crashes")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Log tail polling interval")
	fs.DurationVar(&cfg.GracePeriod, "grace-period", cfg.GracePeriod, "Tail drain period after process exit")
	fs.DurationVar(&cfg.UnlockTimeout, "unlock-timeout", cfg.UnlockTimeout, "Bound on the post-exit wait for the log file to be released")

	// Retry policy
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "Pause between flaky-crash retries (0 = immediate)")
	fs.Float64Var(&cfg.RetryJitter, "retry-jitter", cfg.RetryJitter, "Jitter range as a fraction of -retry-delay")

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Supervisor log format: "json" or "text"`)
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Rotated file for the supervisor's own log (empty = stderr only)")

	// Diagnostics
	fs.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the resolved command and exit")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Path to a YAML configuration file")

	return fs
}

// printFlags prints the named flags (helper for usage).
func printFlags(fs *flag.FlagSet, names ...string) {
	for _, name := range names {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(fs.Output(), "  -%s\n    \t%s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
			fmt.Fprintf(fs.Output(), " (default %s)", f.DefValue)
		}
		fmt.Fprintln(fs.Output())
	}
}
