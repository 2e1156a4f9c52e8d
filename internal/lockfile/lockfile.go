// Package lockfile persists the PID of the supervised process so a
// later invocation (or a cancellation signal) can reach the right
// process.
//
// The lock is an advisory lease, not a mutex: acquiring it never
// blocks, it only reports a possibly stale prior holder. Staleness is
// normal and tolerated; killing a PID that no longer exists is not an
// error.
package lockfile

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/randomizedcoder/go-batch-runner/internal/ps"
)

// Lock is a handle on the well-known lock file path. Components receive
// it explicitly so tests can substitute a temporary path.
type Lock struct {
	path   string
	logger *slog.Logger
}

// New returns a Lock for the given path.
func New(path string, logger *slog.Logger) *Lock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lock{path: path, logger: logger}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Read returns the recorded PID and whether a lock file existed.
func (l *Lock) Read() (int, bool, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, errors.New("lock file " + l.path + " is not a PID: " + strconv.Quote(string(data)))
	}
	return pid, true, nil
}

// Write records pid as the current holder.
func (l *Lock) Write(pid int) error {
	return os.WriteFile(l.path, []byte(strconv.Itoa(pid)), 0o644)
}

// Release removes the lock file. A missing file is not an error.
func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// KillAndRelease terminates the recorded process, then removes the lock
// file unconditionally so the supervisor never wedges on stale state.
// A no-such-process kill failure is silent; any other failure is a
// non-fatal warning. This is the single removal point for the lock
// file.
//
// Returns the PID it attempted to kill and whether a lock existed.
func (l *Lock) KillAndRelease() (int, bool) {
	pid, ok, err := l.Read()
	if err != nil {
		l.logger.Warn("lock_read_failed", "path", l.path, "error", err)
	}

	if ok {
		if killErr := ps.Kill(pid); killErr != nil && !ps.IsNoSuchProcess(killErr) {
			l.logger.Warn("lock_kill_failed", "pid", pid, "error", killErr)
		}
	}

	if relErr := l.Release(); relErr != nil {
		l.logger.Warn("lock_release_failed", "path", l.path, "error", relErr)
	}

	return pid, ok
}
