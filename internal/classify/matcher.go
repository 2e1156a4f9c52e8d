package classify

import (
	"strings"
	"sync"
)

// DefaultFingerprints are the known flaky-crash signatures: a
// numeric-overflow fault and an out-of-memory fault reported by the
// process's own runtime while host memory was not actually exhausted.
// Both are expected to succeed on a bare retry. The set is fixed;
// additional signatures are not inferred.
var DefaultFingerprints = []string{
	"System.OverflowException",
	"Out of memory!",
}

const (
	// MaxLineLength is the maximum length of a single log line before
	// truncation.
	MaxLineLength = 4096

	// MaxBufferedLines is the number of recent lines kept for the
	// failure summary.
	MaxBufferedLines = 100
)

// Matcher scans streamed log lines for flaky-crash fingerprints and
// keeps a ring of recent lines for the failure summary.
type Matcher struct {
	fingerprints []string

	mu      sync.Mutex
	matched string
	buffer  []string
	bufIdx  int
}

// NewMatcher returns a Matcher over the given fingerprint set, or
// DefaultFingerprints when none are supplied.
func NewMatcher(fingerprints []string) *Matcher {
	if len(fingerprints) == 0 {
		fingerprints = DefaultFingerprints
	}
	return &Matcher{
		fingerprints: fingerprints,
		buffer:       make([]string, MaxBufferedLines),
	}
}

// HandleLine records one streamed log line and checks it against the
// fingerprint set. The first match wins; later lines only feed the
// recent-lines ring.
func (m *Matcher) HandleLine(line string) {
	if len(line) > MaxLineLength {
		line = line[:MaxLineLength] + "...(truncated)"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer[m.bufIdx] = line
	m.bufIdx = (m.bufIdx + 1) % MaxBufferedLines

	if m.matched != "" {
		return
	}
	for _, fp := range m.fingerprints {
		if strings.Contains(line, fp) {
			m.matched = fp
			return
		}
	}
}

// Matched returns the fingerprint seen during this attempt, if any.
func (m *Matcher) Matched() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matched, m.matched != ""
}

// RecentLines returns up to n most recent lines in arrival order.
func (m *Matcher) RecentLines(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > MaxBufferedLines {
		n = MaxBufferedLines
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (m.bufIdx - n + i + MaxBufferedLines) % MaxBufferedLines
		if m.buffer[idx] != "" {
			lines = append(lines, m.buffer[idx])
		}
	}
	return lines
}

// Reset clears all state for a new attempt.
func (m *Matcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matched = ""
	m.bufIdx = 0
	for i := range m.buffer {
		m.buffer[i] = ""
	}
}
