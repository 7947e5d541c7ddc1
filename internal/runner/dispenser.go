package runner

import "sync/atomic"

// Dispenser hands out a fixed number of work units to concurrent callers.
// Across all callers, Claim returns true exactly as many times as the
// dispenser was created with.
type Dispenser struct {
	remaining atomic.Int64
}

// NewDispenser creates a dispenser holding total units. Negative totals are
// treated as zero.
func NewDispenser(total int) *Dispenser {
	d := &Dispenser{}
	if total > 0 {
		d.remaining.Store(int64(total))
	}
	return d
}

// Claim reserves one unit. It never blocks; once the dispenser is exhausted
// every call returns false.
func (d *Dispenser) Claim() bool {
	if d.remaining.Load() <= 0 {
		return false
	}
	return d.remaining.Add(-1) >= 0
}

// Remaining reports how many units are still unclaimed.
func (d *Dispenser) Remaining() int64 {
	if n := d.remaining.Load(); n > 0 {
		return n
	}
	return 0
}
