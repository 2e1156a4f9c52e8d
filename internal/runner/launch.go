package runner

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/randomizedcoder/go-batch-runner/internal/lockfile"
)

// Handle is the OS-level identity of the supervised process.
type Handle struct {
	PID       int
	ParentPID int
	Name      string
}

// LaunchError reports that the OS refused to create the process or
// returned no process identity. Fatal; never retried.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return "launch failed: " + e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Launcher spawns the batch process fully detached from the
// supervisor's own process group and records its PID in the lock.
// Detachment is deliberate: orphan cleanup is explicit, not delegated
// to OS cascade-kill semantics, which differ by platform.
type Launcher struct {
	lock   *lockfile.Lock
	logger *slog.Logger

	cmd   *exec.Cmd
	cmdMu sync.Mutex
}

// NewLauncher returns a Launcher recording PIDs in lock.
func NewLauncher(lock *lockfile.Lock, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{lock: lock, logger: logger}
}

// Launch starts command in its own session. A lock left by a prior run
// is killed and released first; the new PID is persisted immediately
// after spawn.
func (l *Launcher) Launch(command Command) (Handle, error) {
	stalePID, hadStale := l.lock.KillAndRelease()

	cmd := exec.Command(command.Path, command.Args...)
	cmd.Env = append(os.Environ(), BatchEnv)
	cmd.SysProcAttr = detachAttr()
	// The process reports through its log file; its own stdio is not
	// mirrored.
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return Handle{}, &LaunchError{Err: err}
	}
	if cmd.Process == nil {
		return Handle{}, &LaunchError{Err: errors.New("no process identity returned")}
	}

	h := Handle{
		PID:       cmd.Process.Pid,
		ParentPID: os.Getpid(),
		Name:      filepath.Base(command.Path),
	}

	if hadStale && stalePID != h.PID {
		l.logger.Warn("stale_process_preempted",
			"stale_pid", stalePID,
			"new_pid", h.PID,
		)
	}

	if err := l.lock.Write(h.PID); err != nil {
		l.logger.Warn("lock_write_failed", "pid", h.PID, "error", err)
	}

	l.cmdMu.Lock()
	l.cmd = cmd
	l.cmdMu.Unlock()

	return h, nil
}

// Wait blocks until the launched process exits and returns its exit
// code. Signal exits map to 128+signal.
func (l *Launcher) Wait() int {
	l.cmdMu.Lock()
	cmd := l.cmd
	l.cmd = nil
	l.cmdMu.Unlock()

	if cmd == nil {
		return 0
	}
	return extractExitCode(cmd.Wait())
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	return 1
}
