package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"routing/pkg/apperror"
	"routing/pkg/config"
)

// installRecorder подменяет глобальный provider на провайдер с span recorder
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	Install(tp, "test")
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		globalProvider = nil
	})
	return recorder
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Name: "routing-engine", Version: "1.2.3", Environment: "test"},
		Tracing: config.TracingConfig{
			Enabled:    true,
			Endpoint:   "localhost:4317",
			SampleRate: 0.5,
		},
	}

	got := FromConfig(cfg)

	if got.ServiceName != "routing-engine" {
		t.Errorf("ServiceName = %s, want app name fallback", got.ServiceName)
	}
	if got.Version != "1.2.3" || got.Environment != "test" {
		t.Errorf("unexpected version/env: %s/%s", got.Version, got.Environment)
	}
	if !got.Enabled || got.SampleRate != 0.5 {
		t.Errorf("unexpected enabled/sample: %v/%v", got.Enabled, got.SampleRate)
	}

	cfg.Tracing.ServiceName = "custom"
	if got := FromConfig(cfg); got.ServiceName != "custom" {
		t.Errorf("ServiceName = %s, want custom", got.ServiceName)
	}
}

func TestInit_Disabled(t *testing.T) {
	provider, err := Init(context.Background(), Config{Enabled: false, ServiceName: "test"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if provider == nil {
		t.Fatal("provider should not be nil")
	}
	if provider.tracer == nil {
		t.Error("tracer should not be nil even when disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() of noop provider error = %v", err)
	}
}

func TestGet_Uninitialized(t *testing.T) {
	globalProvider = nil

	provider := Get()
	if provider == nil {
		t.Fatal("Get() should return provider even when uninitialized")
	}
	if provider.tracer == nil {
		t.Error("tracer should not be nil")
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}

	for _, tt := range tests {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("samplerFor(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}

	if desc := samplerFor(0.25).Description(); desc == "AlwaysOnSampler" || desc == "AlwaysOffSampler" {
		t.Errorf("fractional rate should use a ratio sampler, got %s", desc)
	}
}

func TestStartSpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "test-span")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "test-span" {
		t.Fatalf("expected one ended span named test-span, got %d", len(spans))
	}
}

func TestSpanFromContext(t *testing.T) {
	span := SpanFromContext(context.Background())
	if span == nil {
		t.Error("SpanFromContext should return span (noop)")
	}
}

func TestAddEventAndAttributes(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "test-span")
	AddEvent(ctx, "cache-miss", attribute.String("kind", "dist"))
	SetAttributes(ctx, attribute.Int("key", 42))
	span.End()

	ended := recorder.Ended()[0]
	if len(ended.Events()) != 1 || ended.Events()[0].Name != "cache-miss" {
		t.Errorf("unexpected events: %v", ended.Events())
	}

	found := false
	for _, kv := range ended.Attributes() {
		if kv.Key == "key" && kv.Value.AsInt64() == 42 {
			found = true
		}
	}
	if !found {
		t.Error("attribute key=42 not recorded")
	}
}

func TestSetError(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "test-span")
	SetError(ctx, context.DeadlineExceeded)
	span.End()

	if got := recorder.Ended()[0].Status().Code; got != codes.Error {
		t.Errorf("status = %v, want Error", got)
	}
}

func TestTrace(t *testing.T) {
	recorder := installRecorder(t)

	err := Trace(context.Background(), "dijkstra", func(ctx context.Context) error {
		if !SpanFromContext(ctx).SpanContext().IsValid() {
			t.Error("fn should receive a context with an active span")
		}
		return nil
	}, QueryAttributes("dijkstra", 0, -1)...)
	if err != nil {
		t.Fatalf("Trace() error = %v", err)
	}

	ended := recorder.Ended()[0]
	if ended.Name() != "dijkstra" {
		t.Errorf("span name = %s", ended.Name())
	}
	if ended.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", ended.Status().Code)
	}
}

func TestTrace_Error(t *testing.T) {
	recorder := installRecorder(t)

	want := apperror.OutOfRange("source", 7, 3)
	err := Trace(context.Background(), "bellman_ford", func(context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Trace() should return fn error unchanged, got %v", err)
	}

	ended := recorder.Ended()[0]
	if ended.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", ended.Status().Code)
	}

	found := false
	for _, kv := range ended.Attributes() {
		if kv.Key == "error.code" && kv.Value.AsString() == string(apperror.CodeOutOfRange) {
			found = true
		}
	}
	if !found {
		t.Error("error.code attribute not recorded")
	}
}

func TestTraceValue(t *testing.T) {
	installRecorder(t)

	got, err := TraceValue(context.Background(), "astar", func(context.Context) ([]int, error) {
		return []int{0, 1, 2}, nil
	})
	if err != nil || len(got) != 3 {
		t.Errorf("TraceValue() = %v, %v", got, err)
	}
}

func TestProvider_Tracer(t *testing.T) {
	provider := &Provider{tracer: noop.NewTracerProvider().Tracer("test")}

	if provider.Tracer() == nil {
		t.Error("Tracer() should not return nil")
	}
}

func TestGraphAttributes(t *testing.T) {
	attrs := GraphAttributes(10, 20, 3)

	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[2].Key != AttrGraphVersion || attrs[2].Value.AsInt64() != 3 {
		t.Errorf("unexpected version attribute %v", attrs[2])
	}
}

func TestQueryAttributes(t *testing.T) {
	if got := len(QueryAttributes("astar", 0, 5)); got != 3 {
		t.Errorf("expected 3 attributes with target, got %d", got)
	}
	if got := len(QueryAttributes("dijkstra", 0, -1)); got != 2 {
		t.Errorf("expected 2 attributes without target, got %d", got)
	}
}

func TestCacheAttributes(t *testing.T) {
	attrs := CacheAttributes("path", true)
	if len(attrs) != 2 || !attrs[1].Value.AsBool() {
		t.Errorf("unexpected cache attributes %v", attrs)
	}
}
