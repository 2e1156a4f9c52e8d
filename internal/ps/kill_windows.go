//go:build windows

package ps

import (
	"errors"
	"os"
)

// Kill forcibly terminates the process with the given PID.
func Kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// IsNoSuchProcess reports whether err means the target already exited.
func IsNoSuchProcess(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
