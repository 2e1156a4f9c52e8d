// Package tail incrementally streams newly appended bytes of the batch
// process's log file to the caller's output while the process runs.
package tail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/randomizedcoder/go-batch-runner/internal/stats"
)

const (
	// DefaultPollInterval is the cadence for stat/read cycles.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultGracePeriod is how long tailing keeps draining after the
	// process exit event, so the writer can flush buffered output.
	DefaultGracePeriod = 10 * time.Second

	// DefaultUnlockTimeout bounds the post-exit wait for the writer to
	// release the log file.
	DefaultUnlockTimeout = 30 * time.Second
)

// LineSink receives each complete streamed log line. The fingerprint
// matcher sits behind this interface.
type LineSink interface {
	HandleLine(line string)
}

// Config holds configuration for a Tailer.
type Config struct {
	Path string
	Out  io.Writer

	PollInterval time.Duration // default 100ms
	GracePeriod  time.Duration // default 10s

	Sink   LineSink         // optional
	Stats  *stats.TailStats // optional
	Logger *slog.Logger
}

// Tailer mirrors a growing log file to an output stream. Bytes are
// emitted exactly once, in file-offset order; the cursor only ever
// advances and resets only with a fresh Tailer for the next attempt's
// own log file.
type Tailer struct {
	path   string
	out    io.Writer
	poll   time.Duration
	grace  time.Duration
	sink   LineSink
	stats  *stats.TailStats
	logger *slog.Logger

	consumed int64
	pending  []byte
}

// New returns a Tailer for cfg.
func New(cfg Config) *Tailer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.GracePeriod < 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Tailer{
		path:   cfg.Path,
		out:    cfg.Out,
		poll:   cfg.PollInterval,
		grace:  cfg.GracePeriod,
		sink:   cfg.Sink,
		stats:  cfg.Stats,
		logger: cfg.Logger,
	}
}

// Consumed returns the number of bytes emitted so far.
func (t *Tailer) Consumed() int64 {
	return t.consumed
}

// Run polls the log file until the exited event fires plus the grace
// period, then performs one final drain pass and emits a trailing line
// separator. It returns early only on ctx cancellation (after a final
// drain, so cancellation does not drop already-written bytes).
func (t *Tailer) Run(ctx context.Context, exited <-chan struct{}) {
	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	var deadline <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			t.finish()
			return
		case <-exited:
			exited = nil
			timer := time.NewTimer(t.grace)
			defer timer.Stop()
			deadline = timer.C
		case <-deadline:
			t.finish()
			return
		case <-ticker.C:
			t.drainOnce()
		}
	}
}

// drainOnce reads the byte range [consumed, size) and forwards it.
// Transient stat/read errors skip the cycle; the next poll retries.
func (t *Tailer) drainOnce() {
	start := time.Now()

	fi, err := os.Stat(t.path)
	if err != nil {
		// Not created yet, or briefly unavailable.
		return
	}
	size := fi.Size()
	if size <= t.consumed {
		return
	}

	f, err := os.Open(t.path)
	if err != nil {
		t.logger.Debug("log_open_retry", "path", t.path, "error", err)
		return
	}
	defer f.Close()

	buf := make([]byte, size-t.consumed)
	n, err := f.ReadAt(buf, t.consumed)
	if n == 0 {
		if err != nil && err != io.EOF {
			t.logger.Debug("log_read_retry", "path", t.path, "error", err)
		}
		return
	}
	buf = buf[:n]

	if _, werr := t.out.Write(buf); werr != nil {
		t.logger.Warn("log_mirror_write_failed", "error", werr)
	}
	t.consumed += int64(n)
	t.feedLines(buf)

	if t.stats != nil {
		t.stats.Record(int64(n), time.Since(start))
	}
}

// feedLines forwards complete lines to the sink, holding back the
// trailing partial line until its newline arrives.
func (t *Tailer) feedLines(chunk []byte) {
	if t.sink == nil {
		return
	}
	t.pending = append(t.pending, chunk...)
	for {
		i := bytes.IndexByte(t.pending, '\n')
		if i < 0 {
			return
		}
		line := string(bytes.TrimSuffix(t.pending[:i], []byte("\r")))
		t.pending = t.pending[i+1:]
		t.sink.HandleLine(line)
	}
}

// finish performs the last drain pass, flushes a dangling partial line
// to the sink, and emits the trailing separator so subsequent output is
// not visually concatenated with the mirrored log.
func (t *Tailer) finish() {
	t.drainOnce()
	if t.sink != nil && len(t.pending) > 0 {
		t.sink.HandleLine(string(t.pending))
		t.pending = nil
	}
	fmt.Fprintln(t.out)
}

// WaitUnlocked retries opening the log file for read-write access until
// the writer has released it or the timeout elapses. A crashed writer
// can keep the file handle open briefly on some platforms.
func WaitUnlocked(path string, poll, timeout time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultUnlockTimeout
	}

	deadline := time.Now().Add(timeout)
	for {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err == nil {
			f.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("log file still held after %v: %w", timeout, err)
		}
		time.Sleep(poll)
	}
}
