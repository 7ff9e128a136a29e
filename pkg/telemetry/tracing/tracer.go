package tracing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealshare/trustcore/pkg/config"
	"mealshare/trustcore/pkg/telemetry/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"
)

// instrumentationName identifies spans created by this package.
const instrumentationName = "mealshare/trustcore"

// Tracer wraps the OpenTelemetry tracer used by the sidecar.
type Tracer struct {
	config   *config.TracingConfig
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

// New creates a Tracer from configuration, exporting spans over OTLP gRPC.
//
// If tracing is disabled a noop tracer is returned. Otherwise the global
// tracer provider and W3C propagators are installed. The tracer must be shut
// down when no longer needed:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}
	if !cfg.Enabled {
		return noopTracer(cfg), nil
	}

	exporter, err := createOTLPExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}
	return newWithProcessor(cfg, sdktrace.NewBatchSpanProcessor(exporter))
}

// NewWithExporter creates an enabled Tracer that hands every ended span to
// exporter synchronously. It is meant for tests and local debugging.
func NewWithExporter(cfg *config.TracingConfig, exporter sdktrace.SpanExporter) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}
	if exporter == nil {
		return nil, errors.New("span exporter is nil")
	}
	return newWithProcessor(cfg, sdktrace.NewSimpleSpanProcessor(exporter))
}

func noopTracer(cfg *config.TracingConfig) *Tracer {
	return &Tracer{
		config: cfg,
		tracer: noop.NewTracerProvider().Tracer(instrumentationName),
	}
}

func newWithProcessor(cfg *config.TracingConfig, processor sdktrace.SpanProcessor) (*Tracer, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName(cfg))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleRatio)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return &Tracer{
		config:   cfg,
		tracer:   provider.Tracer(instrumentationName),
		provider: provider,
		enabled:  true,
	}, nil
}

func serviceName(cfg *config.TracingConfig) string {
	if cfg.ServiceName == "" {
		return config.DefaultTracingService
	}
	return cfg.ServiceName
}

// Start creates a new span linked to the parent span in ctx, if any.
//
//	ctx, span := tracer.Start(ctx, "content.validate")
//	defer span.End()
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName).Start(ctx, name, opts...)
	}
	return t.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes pending spans and releases the exporter.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || !t.enabled || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled returns whether spans are recorded and exported.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

func createOTLPExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("OTLP endpoint is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTracingTimeout
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTimeout(timeout),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	// The gRPC connection is established lazily, so an unreachable
	// collector does not block startup.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
}

// SpanFromContext returns the current span from the context.
// If no span exists, a noop span is returned.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// TraceID returns the trace ID from the context as a string.
// Returns empty string if no trace context exists.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span ID from the context as a string.
// Returns empty string if no span context exists.
func SpanID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}

// SetError marks the span as failed. The error message is passed through
// the log redactor before it is attached.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	msg := logging.RedactString(err.Error())
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorMessage, msg),
	)
	span.SetStatus(codes.Error, msg)
}

// SetErrorKind marks the span as failed without attaching any message.
// Use it for errors whose text may carry request data.
func SetErrorKind(span trace.Span, kind string) {
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorKind, kind),
	)
	span.SetStatus(codes.Error, kind)
}

// exportTimeout bounds Shutdown calls made by ShutdownWithTimeout.
const exportTimeout = 5 * time.Second

// ShutdownWithTimeout flushes pending spans, giving up after a few seconds.
func (t *Tracer) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	return t.Shutdown(ctx)
}
