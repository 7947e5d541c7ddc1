package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/torosent/httpbench/internal/metrics"
)

// Phase is the orchestrator's position in a run.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseBuilding
	PhaseRunning
	PhaseDraining
	PhaseReported
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBuilding:
		return "building"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseReported:
		return "reported"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// runState is shared by the orchestrator and its workers for one run.
type runState struct {
	work     *Dispenser
	counters *metrics.Counters
	start    *Latch
	stop     *Latch
}

// Runner drives one benchmark run against a single target.
type Runner struct {
	opt   Options
	phase atomic.Int32
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Phase reports the current orchestrator phase.
func (r *Runner) Phase() Phase {
	return Phase(r.phase.Load())
}

// Run executes exactly TotalRequests work units across Concurrency workers
// and returns the report. It always returns once every unit has been
// classified; ctx is handed to the executor and does not abort the run.
func (r *Runner) Run(ctx context.Context) metrics.Report {
	log := r.opt.Logger.With().Str("url", r.opt.URL).Logger()

	r.setPhase(PhaseBuilding)
	counters := r.opt.Counters
	if counters == nil {
		counters = metrics.NewCounters()
	}
	state := &runState{
		work:     NewDispenser(r.opt.TotalRequests),
		counters: counters,
		start:    NewLatch(r.opt.Concurrency + 1),
		stop:     NewLatch(r.opt.Concurrency),
	}
	for i := 0; i < r.opt.Concurrency; i++ {
		go r.work(ctx, state, i)
	}
	log.Debug().
		Int("concurrency", r.opt.Concurrency).
		Int("total", r.opt.TotalRequests).
		Msg("workers launched")

	r.setPhase(PhaseRunning)
	state.start.CountDown()
	state.start.Wait()
	start := time.Now()

	r.setPhase(PhaseDraining)
	state.stop.Wait()
	elapsed := time.Since(start)

	r.setPhase(PhaseReported)
	report := metrics.Report{
		URL:         r.opt.URL,
		Concurrency: r.opt.Concurrency,
		KeepAlive:   r.opt.KeepAlive,
		Stats:       state.counters.Stats(elapsed),
	}
	log.Debug().
		Int64("successes", report.Successes).
		Int64("failures", report.Failures).
		Dur("elapsed", elapsed).
		Msg("run finished")
	return report
}

// work is the lifecycle of a single worker: wait for the start latch, drain
// the dispenser, then count down the stop latch on every exit path.
func (r *Runner) work(ctx context.Context, state *runState, id int) {
	defer state.stop.CountDown()
	defer func() {
		if p := recover(); p != nil {
			r.opt.Logger.Error().Int("worker", id).Interface("panic", p).Msg("worker stopped")
		}
	}()

	state.start.CountDown()
	state.start.Wait()

	for state.work.Claim() {
		r.execute(ctx, state)
	}
}

// execute runs one claimed unit. A claimed unit is always recorded, even if
// the executor panics.
func (r *Runner) execute(ctx context.Context, state *runState) {
	var outcome Outcome
	defer func() {
		if p := recover(); p != nil {
			outcome = Outcome{Err: fmt.Errorf("executor panic: %v", p)}
		}
		if !outcome.Success {
			r.opt.Logger.Trace().Int("status", outcome.StatusCode).Err(outcome.Err).Msg("request failed")
		}
		state.counters.Record(outcome.Success, outcome.BytesRead)
	}()
	outcome = r.opt.Executor.Execute(ctx)
}

func (r *Runner) setPhase(p Phase) {
	r.phase.Store(int32(p))
}
