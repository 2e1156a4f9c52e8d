//go:build linux

package ps

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// NewLister returns a /proc-backed process lister.
func NewLister() (Lister, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("open procfs: %w", err)
	}
	return &procLister{fs: fs}, nil
}

type procLister struct {
	fs procfs.FS
}

func (l *procLister) List() ([]Process, error) {
	procs, err := l.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list /proc: %w", err)
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		stat, err := p.Stat()
		if err != nil {
			// Process exited between enumeration and stat.
			continue
		}
		out = append(out, Process{PID: p.PID, PPID: stat.PPID, Name: stat.Comm})
	}
	return out, nil
}
