// Package stats aggregates tailing statistics for the end-of-run
// summary.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// TailStats tracks per-poll read sizes and latencies across all
// attempts of a run. Only polls that consumed bytes are recorded.
type TailStats struct {
	mu            sync.Mutex
	bytesDigest   *tdigest.TDigest
	latencyDigest *tdigest.TDigest
	polls         int64
	totalBytes    int64
}

// Summary is a point-in-time snapshot of tailing behavior.
type Summary struct {
	Polls      int64
	TotalBytes int64

	ReadP50Bytes float64
	ReadP99Bytes float64

	LatencyP50 time.Duration
	LatencyP99 time.Duration
}

// NewTailStats returns an empty TailStats.
func NewTailStats() *TailStats {
	return &TailStats{
		bytesDigest:   tdigest.NewWithCompression(100), // ~100 centroids
		latencyDigest: tdigest.NewWithCompression(100),
	}
}

// Record adds one poll cycle that consumed n bytes in the given
// latency.
func (s *TailStats) Record(n int64, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polls++
	s.totalBytes += n
	s.bytesDigest.Add(float64(n), 1)
	s.latencyDigest.Add(latency.Seconds(), 1)
}

// Summary returns the current aggregate view.
func (s *TailStats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Polls:      s.polls,
		TotalBytes: s.totalBytes,
	}
	if s.polls > 0 {
		sum.ReadP50Bytes = s.bytesDigest.Quantile(0.50)
		sum.ReadP99Bytes = s.bytesDigest.Quantile(0.99)
		sum.LatencyP50 = secondsToDuration(s.latencyDigest.Quantile(0.50))
		sum.LatencyP99 = secondsToDuration(s.latencyDigest.Quantile(0.99))
	}
	return sum
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
