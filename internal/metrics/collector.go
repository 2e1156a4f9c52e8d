// Package metrics provides Prometheus metrics for go-batch-runner.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "batch_runner_info",
			Help: "Information about the supervised run (value always 1)",
		},
		[]string{"version", "run_id", "executable"},
	)

	attemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_runner_attempts_total",
			Help: "Total launch attempts, including flaky-crash retries",
		},
	)

	flakyCrashesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_runner_flaky_crashes_total",
			Help: "Attempts classified as flaky crashes",
		},
	)

	orphansReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_runner_orphans_reaped_total",
			Help: "Orphaned child processes targeted for termination",
		},
	)

	tailedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_runner_tailed_bytes_total",
			Help: "Log bytes mirrored to the caller's output",
		},
	)

	processRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_runner_process_running",
			Help: "1 while the supervised process is alive",
		},
	)

	attemptDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_runner_attempt_duration_seconds",
			Help:    "Wall time of each attempt from launch to exit",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14), // 1s .. ~2h
		},
	)
)

var registerOnce sync.Once

// Register installs the collectors in the default registry. Safe to
// call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			runInfo,
			attemptsTotal,
			flakyCrashesTotal,
			orphansReapedTotal,
			tailedBytesTotal,
			processRunning,
			attemptDurationSeconds,
		)
	})
}

// SetInfo records the run identity labels.
func SetInfo(version, runID, executable string) {
	runInfo.WithLabelValues(version, runID, executable).Set(1)
}

// AttemptStarted counts one launch attempt.
func AttemptStarted() {
	attemptsTotal.Inc()
}

// FlakyCrashObserved counts one flaky-crash classification.
func FlakyCrashObserved() {
	flakyCrashesTotal.Inc()
}

// OrphansReaped counts orphans targeted after an attempt.
func OrphansReaped(n int) {
	if n > 0 {
		orphansReapedTotal.Add(float64(n))
	}
}

// AddTailedBytes counts mirrored log bytes.
func AddTailedBytes(n int64) {
	if n > 0 {
		tailedBytesTotal.Add(float64(n))
	}
}

// SetProcessRunning flips the liveness gauge.
func SetProcessRunning(running bool) {
	if running {
		processRunning.Set(1)
	} else {
		processRunning.Set(0)
	}
}

// ObserveAttemptDuration records one attempt's wall time.
func ObserveAttemptDuration(d time.Duration) {
	attemptDurationSeconds.Observe(d.Seconds())
}
