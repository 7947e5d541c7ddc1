package runner

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/torosent/httpbench/internal/metrics"
)

// Outcome is the classified result of one request.
type Outcome struct {
	Success    bool
	BytesRead  int64
	StatusCode int   // 0 when no response was received
	Err        error // transport or read failure, if any
}

// Executor performs one request per claimed work unit. Implementations must
// not return until the request has been fully read or has failed, and must be
// safe for concurrent use.
type Executor interface {
	Execute(ctx context.Context) Outcome
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context) Outcome

func (f ExecutorFunc) Execute(ctx context.Context) Outcome { return f(ctx) }

var errNoExecutor = errors.New("runner: no executor configured")

// Options configure the Runner.
type Options struct {
	URL           string            // reported target; the executor owns the actual request
	Concurrency   int               // number of worker goroutines
	TotalRequests int               // work units for the run (0 runs no requests)
	KeepAlive     bool              // reported only; connection reuse is the client's concern
	Executor      Executor          // request executor (required)
	Counters      *metrics.Counters // optional; must be fresh for every run
	Logger        *zerolog.Logger   // optional diagnostics
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.Executor == nil {
		o.Executor = ExecutorFunc(func(context.Context) Outcome {
			return Outcome{Err: errNoExecutor}
		})
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
}
