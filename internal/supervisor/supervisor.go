package supervisor

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/randomizedcoder/go-batch-runner/internal/classify"
	"github.com/randomizedcoder/go-batch-runner/internal/lockfile"
	"github.com/randomizedcoder/go-batch-runner/internal/metrics"
	"github.com/randomizedcoder/go-batch-runner/internal/ps"
	"github.com/randomizedcoder/go-batch-runner/internal/reap"
	"github.com/randomizedcoder/go-batch-runner/internal/runner"
	"github.com/randomizedcoder/go-batch-runner/internal/stats"
	"github.com/randomizedcoder/go-batch-runner/internal/tail"
)

// DefaultMaxAttempts bounds the flaky-crash retry loop.
const DefaultMaxAttempts = 25

// Callbacks contains optional callback functions for supervision
// events.
type Callbacks struct {
	// OnStateChange is called when the run state changes.
	OnStateChange func(oldState, newState State)

	// OnAttemptStart is called after each launch.
	OnAttemptStart func(attempt, pid int)

	// OnAttemptEnd is called after each attempt is classified.
	OnAttemptEnd func(attempt, exitCode int, outcome classify.Outcome, uptime time.Duration)
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	Builder runner.Builder
	Lock    *lockfile.Lock
	Lister  ps.Lister
	Logger  *slog.Logger

	// Out receives the mirrored log bytes. Defaults to os.Stdout.
	Out io.Writer

	MaxAttempts   int           // default 25
	PollInterval  time.Duration // default 100ms
	GracePeriod   time.Duration // default 10s
	UnlockTimeout time.Duration // default 30s

	RetryDelay  time.Duration // default 0 (immediate retry)
	RetryJitter float64       // fraction of RetryDelay, default 0.4

	// Fingerprints overrides the flaky-crash signature set.
	Fingerprints []string

	// Kill overrides the reaper's kill call. Tests use it.
	Kill reap.KillFunc

	Callbacks Callbacks
	RunID     string
}

// Supervisor manages the lifecycle of a single batch invocation,
// including bounded retries of flaky crashes.
type Supervisor struct {
	builder   runner.Builder
	lock      *lockfile.Lock
	launcher  *runner.Launcher
	matcher   *classify.Matcher
	reaper    *reap.Reaper
	canceller *Canceller
	tailStats *stats.TailStats
	delay     *RetryDelay
	logger    *slog.Logger
	out       io.Writer
	callbacks Callbacks
	runID     string

	maxAttempts   int
	poll          time.Duration
	grace         time.Duration
	unlockTimeout time.Duration

	state    State
	stateMu  sync.RWMutex
	attempts int
}

// New creates a Supervisor with the given configuration.
func New(cfg Config) *Supervisor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = tail.DefaultPollInterval
	}
	if cfg.GracePeriod < 0 {
		cfg.GracePeriod = tail.DefaultGracePeriod
	}
	if cfg.UnlockTimeout <= 0 {
		cfg.UnlockTimeout = tail.DefaultUnlockTimeout
	}
	if cfg.RetryJitter <= 0 {
		cfg.RetryJitter = 0.4
	}

	return &Supervisor{
		builder:       cfg.Builder,
		lock:          cfg.Lock,
		launcher:      runner.NewLauncher(cfg.Lock, cfg.Logger),
		matcher:       classify.NewMatcher(cfg.Fingerprints),
		reaper:        reap.New(cfg.Lister, cfg.Kill, cfg.Logger),
		canceller:     NewCanceller(cfg.Lock, cfg.Logger),
		tailStats:     stats.NewTailStats(),
		delay:         NewRetryDelay(cfg.RetryDelay, cfg.RetryJitter, time.Now().UnixNano()),
		logger:        cfg.Logger,
		out:           cfg.Out,
		callbacks:     cfg.Callbacks,
		runID:         cfg.RunID,
		maxAttempts:   cfg.MaxAttempts,
		poll:          cfg.PollInterval,
		grace:         cfg.GracePeriod,
		unlockTimeout: cfg.UnlockTimeout,
		state:         StateCreated,
	}
}

// Run drives the attempt loop. It blocks until the run reaches a
// terminal state and returns nil on success or cancellation,
// ErrRetriesExhausted after too many flaky crashes, an *ExitError for a
// deterministic failure, or a *runner.LaunchError if the process could
// not be spawned.
func (s *Supervisor) Run(ctx context.Context) error {
	ctx = s.canceller.Watch(ctx)
	start := time.Now()
	defer s.logSummary(start)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.attempts = attempt

		outcome, exitCode, err := s.runAttempt(ctx, attempt)
		if err != nil {
			if s.canceller.Cancelled() {
				s.setState(StateCancelled)
				return nil
			}
			s.setState(StateFailed)
			return err
		}

		switch outcome {
		case classify.Clean:
			s.setState(StateSucceeded)
			return nil

		case classify.Cancelled:
			s.setState(StateCancelled)
			s.logger.Info("run_cancelled", "attempt", attempt, "exit_code", exitCode)
			return nil

		case classify.Failed:
			s.setState(StateFailed)
			return &ExitError{Code: exitCode}

		case classify.FlakyCrash:
			metrics.FlakyCrashObserved()
			if attempt == s.maxAttempts {
				s.logger.Error("flaky_retries_exhausted",
					"attempts", attempt,
					"max_attempts", s.maxAttempts,
				)
				s.setState(StateFailed)
				return ErrRetriesExhausted
			}

			delay := s.delay.Next()
			s.logger.Warn("flaky_crash_detected",
				"attempt", attempt,
				"next_attempt", attempt+1,
				"delay", delay.String(),
			)
			if delay > 0 {
				s.setState(StateRetryWait)
				select {
				case <-ctx.Done():
					if s.canceller.Cancelled() {
						s.setState(StateCancelled)
						return nil
					}
					s.setState(StateFailed)
					return ctx.Err()
				case <-time.After(delay):
				}
			}
		}
	}

	s.setState(StateFailed)
	return ErrRetriesExhausted
}

// runAttempt performs one complete launch/tail/wait/classify/reap
// cycle. The lock file is removed in a deferred KillAndRelease on every
// path, including launch failure and cancellation.
func (s *Supervisor) runAttempt(ctx context.Context, attempt int) (classify.Outcome, int, error) {
	s.setState(StateLaunching)

	command, err := s.builder.BuildCommand(ctx, attempt)
	if err != nil {
		return 0, 0, err
	}
	logPath := s.builder.LogPath(attempt)

	metrics.AttemptStarted()

	defer func() {
		if pid, ok := s.lock.KillAndRelease(); ok {
			s.logger.Debug("lock_released", "attempt", attempt, "pid", pid)
		}
	}()

	handle, err := s.launcher.Launch(command)
	if err != nil {
		return 0, 0, err
	}

	s.logger.Info("attempt_started",
		"run_id", s.runID,
		"attempt", attempt,
		"pid", handle.PID,
		"executable", handle.Name,
		"log_file", logPath,
	)
	if s.callbacks.OnAttemptStart != nil {
		s.callbacks.OnAttemptStart(attempt, handle.PID)
	}

	// The process creates its log file lazily.
	if err := tail.WaitForFile(ctx, logPath, s.poll); err != nil {
		return 0, 0, err
	}

	s.matcher.Reset()
	tailer := tail.New(tail.Config{
		Path:         logPath,
		Out:          s.out,
		PollInterval: s.poll,
		GracePeriod:  s.grace,
		Sink:         s.matcher,
		Stats:        s.tailStats,
		Logger:       s.logger,
	})

	exited := make(chan struct{})
	tailDone := make(chan struct{})
	go func() {
		defer close(tailDone)
		tailer.Run(ctx, exited)
	}()

	s.setState(StateRunning)
	metrics.SetProcessRunning(true)
	startTime := time.Now()

	exitCode := s.launcher.Wait()
	uptime := time.Since(startTime)

	metrics.SetProcessRunning(false)
	metrics.ObserveAttemptDuration(uptime)
	close(exited)

	s.setState(StateDraining)
	<-tailDone
	metrics.AddTailedBytes(tailer.Consumed())

	if err := tail.WaitUnlocked(logPath, s.poll, s.unlockTimeout); err != nil {
		s.logger.Warn("log_release_wait_failed", "attempt", attempt, "error", err)
	}

	fingerprint, flakySeen := s.matcher.Matched()
	outcome := classify.Classify(s.canceller.Cancelled(), exitCode, flakySeen)

	reaped := s.reaper.Reap(handle.PID)
	metrics.OrphansReaped(reaped)

	s.logger.Info("attempt_finished",
		"run_id", s.runID,
		"attempt", attempt,
		"exit_code", exitCode,
		"outcome", outcome.String(),
		"fingerprint", fingerprint,
		"uptime", uptime.String(),
		"orphans_reaped", reaped,
		"log_bytes", tailer.Consumed(),
	)
	if s.callbacks.OnAttemptEnd != nil {
		s.callbacks.OnAttemptEnd(attempt, exitCode, outcome, uptime)
	}

	return outcome, exitCode, nil
}

// logSummary emits the end-of-run summary with tailing percentiles.
func (s *Supervisor) logSummary(start time.Time) {
	sum := s.tailStats.Summary()
	s.logger.Info("run_summary",
		"run_id", s.runID,
		"state", s.State().String(),
		"attempts", s.attempts,
		"total_runtime", time.Since(start).String(),
		"tail_polls", sum.Polls,
		"tail_bytes", sum.TotalBytes,
		"tail_read_p50_bytes", sum.ReadP50Bytes,
		"tail_read_p99_bytes", sum.ReadP99Bytes,
		"tail_latency_p50", sum.LatencyP50.String(),
		"tail_latency_p99", sum.LatencyP99.String(),
	)
}

// State returns the current run state.
func (s *Supervisor) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Attempts returns the number of attempts started so far.
func (s *Supervisor) Attempts() int {
	return s.attempts
}

// CancelNow performs the external-cancellation sequence as if a
// termination signal had been received.
func (s *Supervisor) CancelNow() {
	s.canceller.CancelNow()
}

// setState updates the state and calls the callback if registered.
func (s *Supervisor) setState(newState State) {
	s.stateMu.Lock()
	oldState := s.state
	s.state = newState
	s.stateMu.Unlock()

	if s.callbacks.OnStateChange != nil && oldState != newState {
		s.callbacks.OnStateChange(oldState, newState)
	}
}
