package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// RequestTracer wraps each benchmark request in a client span.
type RequestTracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	propagate  bool
}

// NewRequestTracer returns a tracer that records spans on tracer. When
// propagate is set, Begin also writes traceparent and baggage headers.
func NewRequestTracer(tracer trace.Tracer, propagate bool) *RequestTracer {
	return &RequestTracer{
		tracer: tracer,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		propagate: propagate,
	}
}

// Propagates reports whether requests carry trace context headers.
func (t *RequestTracer) Propagates() bool { return t.propagate }

// Begin starts the span for req and returns req bound to the span context.
func (t *RequestTracer) Begin(req *http.Request) (*http.Request, trace.Span) {
	ctx, span := t.tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("server.address", req.URL.Hostname()),
		),
	)
	if t.propagate {
		t.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}
	return req.WithContext(ctx), span
}

// End records the classified result and closes span. statusCode is zero when
// no response arrived.
func (t *RequestTracer) End(span trace.Span, statusCode int, bytesRead int64, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}
	span.SetAttributes(attribute.Int64("http.response.body.size", bytesRead))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
