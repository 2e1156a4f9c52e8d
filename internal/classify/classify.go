// Package classify turns an attempt's exit condition into an Outcome.
package classify

// Outcome is the classification of a single supervised attempt. It
// drives all downstream branching in the retry loop.
type Outcome int

const (
	// Clean means the process exited zero. Log content is irrelevant.
	Clean Outcome = iota

	// Failed means a nonzero exit with no flaky fingerprint. Terminal,
	// never retried.
	Failed

	// FlakyCrash means a nonzero exit with a known transient crash
	// fingerprint in the log output. Retried up to the attempt bound.
	FlakyCrash

	// Cancelled means the run was interrupted externally. Not an
	// error; overrides every other classification.
	Cancelled
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Clean:
		return "clean"
	case Failed:
		return "failed"
	case FlakyCrash:
		return "flaky_crash"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Classify produces the outcome for one attempt. Cancellation takes
// priority over the exit code, and exit code 0 takes priority over any
// coincidental fingerprint match in the log.
func Classify(cancelled bool, exitCode int, flakySeen bool) Outcome {
	if cancelled {
		return Cancelled
	}
	if exitCode == 0 {
		return Clean
	}
	if flakySeen {
		return FlakyCrash
	}
	return Failed
}
