// Package metrics aggregates request outcomes for a benchmark run.
//
// # Counters
//
// [Counters] holds the success, failure and bytes-transferred totals for one
// run. Every mutation is an atomic add, so workers record outcomes without
// locking:
//
//	counters := metrics.NewCounters()
//	counters.Record(resp.StatusCode == http.StatusOK, bytesRead)
//
// # Statistics
//
// [Counters.Stats] turns the totals into a [Stats] value for a given elapsed
// time. Requests per second divide by the elapsed time floored at one second.
// Call it once the run has finished; calls made while workers are still
// recording see each counter individually up to date but not a consistent
// snapshot across counters.
//
// [Report] adds the run's identity (URL, concurrency, keep-alive) and is what
// the output package renders.
package metrics
