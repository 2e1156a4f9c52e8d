// Package reap terminates child processes left behind by an exited
// supervised process. A hard crash can leave background helper
// processes running indefinitely, which would leak resources on the
// host across many pipeline runs.
package reap

import (
	"log/slog"

	"github.com/randomizedcoder/go-batch-runner/internal/ps"
)

// KillFunc terminates the process with the given PID.
type KillFunc func(pid int) error

// Reaper kills orphaned children of an exited supervised process.
type Reaper struct {
	lister ps.Lister
	kill   KillFunc
	logger *slog.Logger
}

// New returns a Reaper over the given lister. A nil kill falls back to
// the platform kill.
func New(lister ps.Lister, kill KillFunc, logger *slog.Logger) *Reaper {
	if kill == nil {
		kill = ps.Kill
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{lister: lister, kill: kill, logger: logger}
}

// Reap kills every live process whose parent PID equals parentPID,
// skipping deny-listed system names. Each kill is independent and
// best-effort: an already-gone target is a debug event, any other
// failure is logged and the remaining siblings are still reaped.
// Must only run after the parent's exit has been confirmed.
//
// Returns the number of processes targeted for termination.
func (r *Reaper) Reap(parentPID int) int {
	procs, err := r.lister.List()
	if err != nil {
		r.logger.Error("process_list_failed", "error", err)
		return 0
	}

	targeted := 0
	for _, p := range procs {
		if p.PPID != parentPID {
			continue
		}
		if ps.IsSystemProcess(p.Name) {
			r.logger.Debug("orphan_skipped_system",
				"pid", p.PID,
				"name", p.Name,
			)
			continue
		}

		targeted++
		if err := r.kill(p.PID); err != nil {
			if ps.IsNoSuchProcess(err) {
				r.logger.Debug("orphan_already_gone", "pid", p.PID, "name", p.Name)
			} else {
				r.logger.Error("orphan_kill_failed",
					"pid", p.PID,
					"name", p.Name,
					"error", err,
				)
			}
			continue
		}

		r.logger.Info("orphan_killed",
			"pid", p.PID,
			"name", p.Name,
			"parent_pid", parentPID,
		)
	}

	return targeted
}
