package supervisor

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted is returned when every allowed attempt ended in a
// flaky crash.
var ErrRetriesExhausted = errors.New("process crashed in a flaky manner too many times")

// ExitError reports a deterministic nonzero exit. Never retried.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process failed with exit code %d", e.Code)
}
