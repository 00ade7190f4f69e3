package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/statebox/pkg/state"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type startedSpan struct {
	name string
	cfg  trace.SpanConfig
}

// recordingTracer records span starts and delegates to a no-op tracer.
type recordingTracer struct {
	noop.Tracer

	mu    sync.Mutex
	spans []startedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t.mu.Lock()
	t.spans = append(t.spans, startedSpan{name: name, cfg: trace.NewSpanStartConfig(opts...)})
	t.mu.Unlock()
	return t.Tracer.Start(ctx, name, opts...)
}

type recordingProvider struct {
	noop.TracerProvider

	name   string
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	p.name = name
	return p.tracer
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

func TestOpenTelemetryObserver(t *testing.T) {
	tp := newRecordingProvider()
	tr := OpenTelemetry(WithTracerProvider(tp), WithTracerName("test"))
	if tp.name != "test" {
		t.Errorf("expected tracer name test, got %q", tp.name)
	}

	c := state.New(0, state.WithName("count"), state.WithObserver(tr))
	c.Subscribe(func(int) {})
	c.Set(1)
	c.Set(1)

	if len(tp.tracer.spans) != 1 {
		t.Fatalf("expected 1 span (unchanged writes skipped), got %d", len(tp.tracer.spans))
	}
	span := tp.tracer.spans[0]
	if span.name != SpanName {
		t.Errorf("expected span %s, got %s", SpanName, span.name)
	}
	if span.cfg.SpanKind() != trace.SpanKindInternal {
		t.Errorf("expected internal span, got %v", span.cfg.SpanKind())
	}

	attrs := attribute.NewSet(span.cfg.Attributes()...)
	if v, ok := attrs.Value("statebox.container"); !ok || v.AsString() != "count" {
		t.Errorf("expected container attribute count, got %v", v)
	}
	if v, ok := attrs.Value("statebox.notified"); !ok || v.AsInt64() != 1 {
		t.Errorf("expected notified attribute 1, got %v", v)
	}
}

func TestOpenTelemetryBackdatesSpan(t *testing.T) {
	tp := newRecordingProvider()
	tr := OpenTelemetry(WithTracerProvider(tp))

	start := time.Now().Add(-time.Minute)
	tr.OnSet(context.Background(), state.SetEvent{Name: "x", Changed: true, Start: start, Duration: time.Millisecond})

	if len(tp.tracer.spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(tp.tracer.spans))
	}
	if got := tp.tracer.spans[0].cfg.Timestamp(); !got.Equal(start) {
		t.Errorf("expected span start %v, got %v", start, got)
	}
}

func TestOpenTelemetryOptions(t *testing.T) {
	tp := newRecordingProvider()
	tr := OpenTelemetry(
		WithTracerProvider(tp),
		WithTraceUnchanged(true),
		WithSetFilter(func(ev state.SetEvent) bool { return ev.Name != "skip" }),
	)

	tr.OnSet(context.Background(), state.SetEvent{Name: "keep"})
	tr.OnSet(context.Background(), state.SetEvent{Name: "skip", Changed: true})

	if len(tp.tracer.spans) != 1 {
		t.Errorf("expected only the unchanged, unfiltered write to be traced, got %d spans", len(tp.tracer.spans))
	}
}
