// Package main provides the go-batch-runner CLI entry point.
//
// go-batch-runner supervises a single non-interactive batch invocation
// of an editor/compiler-style executable on behalf of a CI pipeline:
// it mirrors the process's log file to stdout in real time, detects
// and retries known flaky crashes, cleans up orphaned child processes,
// and resolves to a single pass/fail status.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/randomizedcoder/go-batch-runner/internal/config"
	"github.com/randomizedcoder/go-batch-runner/internal/lockfile"
	"github.com/randomizedcoder/go-batch-runner/internal/logging"
	"github.com/randomizedcoder/go-batch-runner/internal/metrics"
	"github.com/randomizedcoder/go-batch-runner/internal/ps"
	"github.com/randomizedcoder/go-batch-runner/internal/runner"
	"github.com/randomizedcoder/go-batch-runner/internal/supervisor"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-batch-runner
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-batch-runner %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	logger := logging.New(logging.Options{
		Format:  cfg.LogFormat,
		Level:   "info",
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
	})
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	base := runner.Command{Path: cfg.Command[0], Args: cfg.Command[1:]}
	builder, err := runner.NewBatchBuilder(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid command: %v\n", err)
		return 1
	}

	if cfg.PrintCmd {
		printResolvedCommand(builder)
		return 0
	}

	runID := uuid.NewString()
	logger.Info("starting",
		"version", version,
		"run_id", runID,
		"executable", builder.Name(),
		"lock_file", cfg.LockPath,
		"max_attempts", cfg.MaxAttempts,
	)

	metrics.Register()
	metrics.SetInfo(version, runID, builder.Name())
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, logger)
		srv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	lister, err := ps.NewLister()
	if err != nil {
		logger.Error("process_lister_unavailable", "error", err)
		return 1
	}

	sup := supervisor.New(supervisor.Config{
		Builder:       builder,
		Lock:          lockfile.New(cfg.LockPath, logger),
		Lister:        lister,
		Logger:        logger,
		Out:           os.Stdout,
		MaxAttempts:   cfg.MaxAttempts,
		PollInterval:  cfg.PollInterval,
		GracePeriod:   cfg.GracePeriod,
		UnlockTimeout: cfg.UnlockTimeout,
		RetryDelay:    cfg.RetryDelay,
		RetryJitter:   cfg.RetryJitter,
		RunID:         runID,
	})

	if err := sup.Run(context.Background()); err != nil {
		logger.Error("run_failed", "run_id", runID, "error", err)
		return 1
	}
	return 0
}

// printResolvedCommand prints the command supervision would launch,
// including the headless wrapper and per-attempt log substitution.
func printResolvedCommand(builder *runner.BatchBuilder) {
	cmd, err := builder.BuildCommand(context.Background(), 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building command: %v\n", err)
		return
	}
	fmt.Println("# Command that would be launched for attempt 1:")
	fmt.Println()
	fmt.Println(cmd.String())
}
