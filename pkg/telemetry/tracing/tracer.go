package tracing

import (
	"context"
	"errors"
	"fmt"

	"bubu-hq/verifier/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "bubu-hq/verifier"

// Tracer wraps the OpenTelemetry tracer used for verification runs.
// A disabled Tracer hands out non-recording spans.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// New creates a Tracer from configuration. When tracing is disabled a noop
// tracer is returned. An enabled tracer exports over OTLP gRPC and must be
// shut down to flush pending spans:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}
	if !cfg.Enabled {
		return Noop(), nil
	}

	exporter, err := createOTLPExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	t, err := NewWithExporter(cfg, exporter)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(t.provider)
	return t, nil
}

// NewWithExporter creates an enabled Tracer that sends spans to exporter.
func NewWithExporter(cfg *config.TracingConfig, exporter sdktrace.SpanExporter) (*Tracer, error) {
	sampler, err := createSampler(cfg.Sampler, cfg.SampleRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = config.DefaultTracingServiceName
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	return &Tracer{
		tracer:   provider.Tracer(instrumentationName),
		provider: provider,
		enabled:  true,
	}, nil
}

// Noop returns a disabled Tracer.
func Noop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}
}

// Start creates a span as a child of any span in ctx. The span must be ended:
//
//	ctx, span := tracer.Start(ctx, "verifier.run")
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// ForceFlush exports all finished spans without shutting down.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if !t.enabled || t.provider == nil {
		return nil
	}
	return t.provider.ForceFlush(ctx)
}

// Shutdown flushes pending spans and stops the exporter.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.enabled || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled returns whether tracing is enabled.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// createOTLPExporter creates an OTLP gRPC exporter. The connection is made
// lazily, so a missing collector does not block the run.
func createOTLPExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
	}

	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exporter, nil
}

// TraceID returns the trace ID from the context as a string, or "" when
// the context carries no valid span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SetError marks the span as failed and records the error.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.Bool("error", true))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
