//go:build !windows

package ps

import (
	"errors"
	"syscall"
)

// Kill forcibly terminates the process with the given PID.
func Kill(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}

// IsNoSuchProcess reports whether err means the target already exited.
func IsNoSuchProcess(err error) bool {
	return errors.Is(err, syscall.ESRCH)
}
