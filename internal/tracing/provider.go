// Package tracing exports one OpenTelemetry client span per benchmark request
// and optionally propagates W3C trace context to the target.
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/torosent/httpbench/internal/config"
)

const (
	instrumentationName = "httpbench"
	exportTimeout       = 10 * time.Second
)

// Provider owns the span pipeline for a benchmark process.
type Provider struct {
	tp       *sdktrace.TracerProvider
	requests *RequestTracer
}

// Setup builds the exporter described by cfg. With no endpoint configured it
// returns a Provider whose Requests is nil and nothing is exported.
func Setup(ctx context.Context, cfg config.TracingConfig, logger zerolog.Logger) (*Provider, error) {
	if !cfg.Enabled() {
		return &Provider{}, nil
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn().Err(err).Msg("tracing export failed")
	}))
	logger.Debug().
		Str("endpoint", cfg.Endpoint).
		Str("protocol", protocol(cfg)).
		Float64("sample_rate", cfg.SampleRate).
		Bool("propagate", cfg.Propagate).
		Msg("tracing enabled")

	return &Provider{
		tp:       tp,
		requests: NewRequestTracer(tp.Tracer(instrumentationName), cfg.Propagate),
	}, nil
}

// Requests returns the tracer to hand to request executors, or nil when
// tracing is disabled.
func (p *Provider) Requests() *RequestTracer {
	if p == nil {
		return nil
	}
	return p.requests
}

// Shutdown flushes buffered spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// newResource labels spans with the service name. An explicit name wins over
// OTEL_SERVICE_NAME, which wins over the default.
func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	opts := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(instrumentationName)),
		resource.WithFromEnv(),
	}
	if serviceName != "" {
		opts = append(opts, resource.WithAttributes(semconv.ServiceName(serviceName)))
	}
	return resource.New(ctx, opts...)
}

// sampler expects a rate already validated to [0, 1].
func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func protocol(cfg config.TracingConfig) string {
	if cfg.Protocol == "" {
		return "grpc"
	}
	return cfg.Protocol
}

func newExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch p := protocol(cfg); p {
	case "grpc":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithTimeout(exportTimeout),
		}
		if cfg.Insecure {
			opts = append(opts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithTimeout(exportTimeout),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q: use \"grpc\" or \"http\"", p)
	}
}
