package supervisor

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/randomizedcoder/go-batch-runner/internal/lockfile"
)

// Canceller turns the first external termination signal into an
// explicit cancellation: kill the locked process, drop the lock, flip
// the flag, cancel the run context. The listener is one-shot; a second
// signal is a no-op. Every component checks the flag before treating a
// nonzero exit as an error.
type Canceller struct {
	lock   *lockfile.Lock
	logger *slog.Logger

	cancelled atomic.Bool
	started   atomic.Bool

	// mu guards cancel. Watch runs on the supervision goroutine while
	// CancelNow can arrive from any goroutine.
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCanceller returns a Canceller operating on lock.
func NewCanceller(lock *lockfile.Lock, logger *slog.Logger) *Canceller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Canceller{lock: lock, logger: logger}
}

// Watch registers the one-shot signal listener and returns a context
// that is cancelled when a signal arrives.
func (c *Canceller) Watch(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	// A cancellation that landed before this registration still has to
	// cancel the derived context.
	if c.cancelled.Load() {
		cancel()
	}

	if !c.started.CompareAndSwap(false, true) {
		return ctx
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-ch
		if !ok {
			return
		}
		signal.Stop(ch)
		c.logger.Info("termination_signal_received", "signal", sig.String())
		c.CancelNow()
	}()

	return ctx
}

// CancelNow performs the cancellation sequence as if a termination
// signal had been received. Idempotent.
func (c *Canceller) CancelNow() {
	if !c.cancelled.CompareAndSwap(false, true) {
		return
	}

	pid, ok := c.lock.KillAndRelease()
	if ok {
		c.logger.Debug("cancelled_process_killed", "pid", pid)
	}

	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Cancelled reports whether the run was externally cancelled.
func (c *Canceller) Cancelled() bool {
	return c.cancelled.Load()
}
