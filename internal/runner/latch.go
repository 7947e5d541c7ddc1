package runner

import "sync"

// Latch is a one-shot countdown barrier. Wait blocks until CountDown has been
// called count times; afterwards Wait returns immediately.
type Latch struct {
	mu    sync.Mutex
	count int
	done  chan struct{}
}

// NewLatch returns a latch that releases after count arrivals. A count of
// zero or less is already released.
func NewLatch(count int) *Latch {
	l := &Latch{count: count, done: make(chan struct{})}
	if count <= 0 {
		close(l.done)
	}
	return l
}

// CountDown records one arrival. Extra calls after release are ignored.
func (l *Latch) CountDown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count <= 0 {
		return
	}
	l.count--
	if l.count == 0 {
		close(l.done)
	}
}

// Wait blocks until the latch releases.
func (l *Latch) Wait() {
	<-l.done
}

// Done returns a channel closed when the latch releases.
func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// Count reports the arrivals still outstanding.
func (l *Latch) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
