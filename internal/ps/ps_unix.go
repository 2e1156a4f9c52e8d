//go:build !linux && !windows

package ps

import (
	"fmt"
	"os/exec"
)

// NewLister returns a lister backed by the ps command.
func NewLister() (Lister, error) {
	if _, err := exec.LookPath("ps"); err != nil {
		return nil, fmt.Errorf("ps not available: %w", err)
	}
	return psLister{}, nil
}

type psLister struct{}

func (psLister) List() ([]Process, error) {
	out, err := exec.Command("ps", "-axo", "pid,ppid,comm").Output()
	if err != nil {
		return nil, fmt.Errorf("run ps: %w", err)
	}
	return parsePSOutput(string(out))
}
