package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/torosent/httpbench/internal/runner"
	"github.com/torosent/httpbench/internal/tracing"
)

// StatusError marks a response that arrived intact but was not HTTP 200.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Executor issues one request per call. It is safe for concurrent use.
type Executor struct {
	client  *http.Client
	builder *RequestBuilder
	tracing *tracing.RequestTracer
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithTracing records a client span around every request.
func WithTracing(rt *tracing.RequestTracer) ExecutorOption {
	return func(e *Executor) {
		e.tracing = rt
	}
}

// NewExecutor returns an executor sending builder's request through client.
func NewExecutor(client *http.Client, builder *RequestBuilder, opts ...ExecutorOption) *Executor {
	e := &Executor{client: client, builder: builder}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ runner.Executor = (*Executor)(nil)

// Execute performs the request and classifies it. Errors never escape: a
// failed connect, write or read yields an unsuccessful Outcome carrying the
// bytes consumed before the failure.
func (e *Executor) Execute(ctx context.Context) runner.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := e.builder.Build(ctx)
	if err != nil {
		return runner.Outcome{Err: fmt.Errorf("build request: %w", err)}
	}
	if e.tracing == nil {
		return e.roundTrip(req)
	}

	req, span := e.tracing.Begin(req)
	outcome := e.roundTrip(req)
	e.tracing.End(span, outcome.StatusCode, outcome.BytesRead, outcome.Err)
	return outcome
}

func (e *Executor) roundTrip(req *http.Request) runner.Outcome {
	// Do closes the request body on every path.
	resp, err := e.client.Do(req)
	if err != nil {
		return runner.Outcome{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	outcome := runner.Outcome{StatusCode: resp.StatusCode}
	n, err := io.Copy(io.Discard, resp.Body)
	outcome.BytesRead = n
	if err != nil {
		outcome.Err = fmt.Errorf("read body: %w", err)
		return outcome
	}
	if resp.StatusCode != http.StatusOK {
		outcome.Err = &StatusError{StatusCode: resp.StatusCode}
		return outcome
	}
	outcome.Success = true
	return outcome
}
