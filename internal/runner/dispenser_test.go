package runner_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/torosent/httpbench/internal/runner"
)

func TestDispenserClaimsExactlyTotal(t *testing.T) {
	for _, total := range []int{0, 1, 7, 1000} {
		d := runner.NewDispenser(total)
		claimed := 0
		for d.Claim() {
			claimed++
		}
		if claimed != total {
			t.Errorf("NewDispenser(%d): claimed %d", total, claimed)
		}
		if d.Claim() {
			t.Errorf("NewDispenser(%d): Claim() after exhaustion returned true", total)
		}
		if d.Remaining() != 0 {
			t.Errorf("NewDispenser(%d): Remaining() = %d, want 0", total, d.Remaining())
		}
	}
}

func TestDispenserNegativeTotal(t *testing.T) {
	d := runner.NewDispenser(-3)
	if d.Claim() {
		t.Fatal("Claim() on negative total returned true")
	}
}

func TestDispenserConcurrentClaims(t *testing.T) {
	const total = 10000
	for _, callers := range []int{1, 2, 3, 8, 64, 257} {
		d := runner.NewDispenser(total)
		var claimed int64
		var wg sync.WaitGroup
		wg.Add(callers)
		for i := 0; i < callers; i++ {
			go func() {
				defer wg.Done()
				for d.Claim() {
					atomic.AddInt64(&claimed, 1)
				}
				// exhausted dispensers keep answering false
				for j := 0; j < 10; j++ {
					if d.Claim() {
						atomic.AddInt64(&claimed, 1)
					}
				}
			}()
		}
		wg.Wait()
		if claimed != total {
			t.Errorf("callers=%d: claimed %d, want %d", callers, claimed, total)
		}
	}
}
