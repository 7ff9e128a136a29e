package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealshare/trustcore/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{
		Enabled:     true,
		ServiceName: "trustcore-test",
		SampleRatio: 1.0,
	}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.TracingConfig
		wantErr     bool
		wantEnabled bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:   "disabled tracing",
			config: &config.TracingConfig{Enabled: false},
		},
		{
			name:    "enabled without endpoint",
			config:  &config.TracingConfig{Enabled: true, SampleRatio: 1},
			wantErr: true,
		},
		{
			name: "enabled with insecure endpoint",
			config: &config.TracingConfig{
				Enabled:     true,
				Endpoint:    "localhost:4317",
				Insecure:    true,
				SampleRatio: 0.5,
			},
			wantEnabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer tracer.ShutdownWithTimeout()

			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
		})
	}
}

func TestTracer_DisabledIsNoop(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}

	ctx, span := tracer.Start(context.Background(), "content.check")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	if TraceID(ctx) != "" || SpanID(ctx) != "" {
		t.Error("disabled tracer exposed trace identifiers")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_NilIsNoop(t *testing.T) {
	var tracer *Tracer
	_, span := tracer.Start(context.Background(), "content.check")
	span.End()

	if tracer.Enabled() {
		t.Error("nil tracer reports enabled")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_RecordsSpans(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	ctx, parent := tracer.Start(context.Background(), "POST /v1/content/validate")
	if TraceID(ctx) == "" || SpanID(ctx) == "" {
		t.Fatal("expected trace and span IDs in context")
	}
	_, child := tracer.Start(ctx, "content.validate")
	SetContentAttributes(child, "validate", true, "profanity", 17)
	SetTermSetAttributes(child, "aho-corasick", 120, 3)
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}

	got := spans[0]
	if got.Name != "content.validate" {
		t.Errorf("first span = %q, want content.validate", got.Name)
	}
	if got.Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("child span is not linked to its parent")
	}

	attrs := attrMap(got.Attributes)
	if attrs[AttrResult].AsString() != "violation" {
		t.Errorf("%s = %q", AttrResult, attrs[AttrResult].AsString())
	}
	if attrs[AttrCategory].AsString() != "profanity" {
		t.Errorf("%s = %q", AttrCategory, attrs[AttrCategory].AsString())
	}
	if attrs[AttrTermSetVersion].AsInt64() != 3 {
		t.Errorf("%s = %d", AttrTermSetVersion, attrs[AttrTermSetVersion].AsInt64())
	}
}

func TestSetContentAttributes_CleanOmitsCategory(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "content.check")
	SetContentAttributes(span, "check", false, "profanity", 5)
	span.End()

	attrs := attrMap(exporter.GetSpans()[0].Attributes)
	if _, ok := attrs[AttrCategory]; ok {
		t.Error("clean result recorded a category")
	}
	if attrs[AttrResult].AsString() != "clean" {
		t.Errorf("%s = %q, want clean", AttrResult, attrs[AttrResult].AsString())
	}
}

func TestSetError_Redacts(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "location.public")
	SetError(span, errors.New("lookup failed for 52.520008, 13.404954"))
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status.Code)
	}
	msg := attrMap(got.Attributes)[AttrErrorMessage].AsString()
	if strings.Contains(msg, "52.520008") || strings.Contains(got.Status.Description, "52.520008") {
		t.Errorf("coordinates leaked into span: %q / %q", msg, got.Status.Description)
	}

	SetError(span, nil)
}

func TestSetArgumentError(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "location.public")
	SetArgumentError(span, "lat")
	SetLocationAttributes(span, "invalid_argument")
	span.End()

	got := exporter.GetSpans()[0]
	attrs := attrMap(got.Attributes)
	if attrs[AttrErrorField].AsString() != "lat" {
		t.Errorf("%s = %q, want lat", AttrErrorField, attrs[AttrErrorField].AsString())
	}
	if attrs[AttrErrorKind].AsString() != "invalid_argument" {
		t.Errorf("%s = %q", AttrErrorKind, attrs[AttrErrorKind].AsString())
	}
	if got.Status.Description != "invalid_argument" {
		t.Errorf("status description = %q", got.Status.Description)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  sdktrace.SamplingDecision
	}{
		{ratio: 1, want: sdktrace.RecordAndSample},
		{ratio: 2, want: sdktrace.RecordAndSample},
		{ratio: 0, want: sdktrace.Drop},
		{ratio: -1, want: sdktrace.Drop},
	}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	for _, tt := range tests {
		sampler := newSampler(tt.ratio)
		res := sampler.ShouldSample(sdktrace.SamplingParameters{
			ParentContext: context.Background(),
			TraceID:       traceID,
			Name:          "root",
		})
		if res.Decision != tt.want {
			t.Errorf("newSampler(%v) decision = %v, want %v", tt.ratio, res.Decision, tt.want)
		}
	}
}

func TestNewSampler_FollowsParent(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	parent := trace.ContextWithRemoteSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))

	res := newSampler(0).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: parent,
		TraceID:       traceID,
		Name:          "child",
	})
	if res.Decision != sdktrace.RecordAndSample {
		t.Errorf("sampled parent: decision = %v, want RecordAndSample", res.Decision)
	}
}

func TestHTTPMiddleware_ContinuesIncomingTrace(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	var handlerTraceID string
	handler := HTTPMiddleware(tracer, "/v1/content/check", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerTraceID = TraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/content/check", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if handlerTraceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("handler trace ID = %q", handlerTraceID)
	}
	if rec.Header().Get("X-Trace-ID") != handlerTraceID {
		t.Errorf("X-Trace-ID = %q", rec.Header().Get("X-Trace-ID"))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "POST /v1/content/check" {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Parent.SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent span = %s", spans[0].Parent.SpanID())
	}
}

func TestHTTPMiddleware_PanicMarksSpanFailed(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	handler := HTTPMiddleware(tracer, "/v1/location/public", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("bad point 52.52, 13.40")
	}))

	func() {
		defer func() {
			if v := recover(); v == nil {
				t.Error("panic was swallowed")
			}
		}()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/location/public", nil))
	}()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status.Code)
	}
	if strings.Contains(spans[0].Status.Description, "52.52") {
		t.Errorf("coordinates leaked into span status: %q", spans[0].Status.Description)
	}
}
