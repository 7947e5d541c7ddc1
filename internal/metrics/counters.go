package metrics

import (
	"sync/atomic"
	"time"
)

// Counters records per-request outcomes using atomic operations only.
type Counters struct {
	successes atomic.Int64
	failures  atomic.Int64
	bytes     atomic.Int64
}

// Stats represents the aggregated totals of a run.
type Stats struct {
	Total            int64         `json:"total" yaml:"total"`
	Successes        int64         `json:"successes" yaml:"successes"`
	Failures         int64         `json:"failures" yaml:"failures"`
	BytesTransferred int64         `json:"bytes_transferred" yaml:"bytes_transferred"`
	Duration         time.Duration `json:"-" yaml:"-"`
	ElapsedSeconds   float64       `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	RequestsPerSec   float64       `json:"requests_per_sec" yaml:"requests_per_sec"`
}

// NewCounters returns zeroed counters for one run.
func NewCounters() *Counters {
	return &Counters{}
}

// Record folds a single request outcome into the totals.
func (c *Counters) Record(success bool, bytesRead int64) {
	if success {
		c.successes.Add(1)
	} else {
		c.failures.Add(1)
	}
	if bytesRead > 0 {
		c.bytes.Add(bytesRead)
	}
}

func (c *Counters) Successes() int64 { return c.successes.Load() }

func (c *Counters) Failures() int64 { return c.failures.Load() }

func (c *Counters) Bytes() int64 { return c.bytes.Load() }

// Completed reports how many outcomes have been recorded so far.
func (c *Counters) Completed() int64 {
	return c.successes.Load() + c.failures.Load()
}

// Stats computes aggregated statistics for the given elapsed time.
func (c *Counters) Stats(elapsed time.Duration) Stats {
	if elapsed < 0 {
		elapsed = 0
	}
	successes := c.successes.Load()
	failures := c.failures.Load()
	total := successes + failures

	stats := Stats{
		Total:            total,
		Successes:        successes,
		Failures:         failures,
		BytesTransferred: c.bytes.Load(),
		Duration:         elapsed,
		ElapsedSeconds:   elapsed.Seconds(),
	}
	stats.RequestsPerSec = RequestsPerSecond(total, elapsed)
	return stats
}

// RequestsPerSecond divides total by elapsed seconds, never by less than one.
func RequestsPerSecond(total int64, elapsed time.Duration) float64 {
	divisor := elapsed.Seconds()
	if divisor < 1 {
		divisor = 1
	}
	return float64(total) / divisor
}
