// Package supervisor drives the bounded attempt loop for one batch
// invocation: launch, tail, wait, classify, reap, and retry on flaky
// crashes.
package supervisor

// State represents the current phase of the supervised run.
type State int

const (
	// StateCreated is the initial state before the first attempt.
	StateCreated State = iota

	// StateLaunching indicates the batch process is being spawned.
	StateLaunching

	// StateRunning indicates the batch process is actively running.
	StateRunning

	// StateDraining indicates the process exited and the tail grace
	// period is in progress.
	StateDraining

	// StateRetryWait indicates a flaky crash is waiting for the next
	// attempt.
	StateRetryWait

	// StateSucceeded is the terminal success state.
	StateSucceeded

	// StateCancelled is the terminal state after external cancellation.
	// Not an error.
	StateCancelled

	// StateFailed is the terminal failure state.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateRetryWait:
		return "retry_wait"
	case StateSucceeded:
		return "succeeded"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true once the run can no longer change state.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateCancelled || s == StateFailed
}
