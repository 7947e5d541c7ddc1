package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/httpbench/internal/metrics"
)

// ProgressReporter periodically prints a single status line for a run that is
// still in flight. It only reads counters; it never blocks the workers.
type ProgressReporter struct {
	counters *metrics.Counters
	total    int64
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	wrote    bool
	start    time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(counters *metrics.Counters, total int64, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ProgressReporter{
		counters: counters,
		total:    total,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	p.start = time.Now()
	go p.run()
}

// Stop halts progress updates and terminates the status line.
func (p *ProgressReporter) Stop() {
	if !atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		p.ticker.Stop()
		return
	}
	close(p.done)
	p.ticker.Stop()
	<-p.finished
	if p.wrote {
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, p.line(time.Since(p.start)))
			p.wrote = true
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) line(elapsed time.Duration) string {
	stats := p.counters.Stats(elapsed)
	return fmt.Sprintf("\rRequests: %d/%d | Successes: %d | Failures: %d | Bytes: %d | RPS: %.1f",
		stats.Total, p.total, stats.Successes, stats.Failures, stats.BytesTransferred, stats.RequestsPerSec)
}
