// Package runner provides the benchmark run engine for httpbench.
//
// A run fires a fixed number of requests at one target using a fixed number of
// worker goroutines:
//   - A [Dispenser] hands out work units, each exactly once
//   - A start [Latch] sized for every worker plus the orchestrator releases all
//     workers at the same instant
//   - A stop [Latch] sized for every worker tells the orchestrator the run is over
//   - Outcomes are folded into lock-free counters from the metrics package
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		URL:           "http://localhost:8080/",
//		Concurrency:   10,
//		TotalRequests: 1000,
//		KeepAlive:     false,
//		Executor:      exec,
//	})
//	report := r.Run(ctx)
//
// # Executor Interface
//
// The [Executor] interface defines what a worker does with each claimed unit:
//
//	type Executor interface {
//		Execute(ctx context.Context) Outcome
//	}
//
// Executors never return errors; a failed round-trip is an [Outcome] with
// Success set to false.
//
// # Timing
//
// The clock starts when the start latch releases and stops when the last
// worker has counted down the stop latch. Requests per second divide by at
// least one second.
package runner
