//go:build windows

package ps

import (
	"fmt"
	"os/exec"
)

// NewLister returns a lister backed by wmic.
func NewLister() (Lister, error) {
	if _, err := exec.LookPath("wmic"); err != nil {
		return nil, fmt.Errorf("wmic not available: %w", err)
	}
	return wmicLister{}, nil
}

type wmicLister struct{}

func (wmicLister) List() ([]Process, error) {
	out, err := exec.Command("wmic", "process", "get", "Name,ParentProcessId,ProcessId").Output()
	if err != nil {
		return nil, fmt.Errorf("run wmic: %w", err)
	}
	return parseWMICOutput(string(out))
}
