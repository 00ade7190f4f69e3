package observe

import (
	"context"

	"github.com/vango-dev/statebox/pkg/state"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "statebox"

// SpanName is the name of the span recorded for each write.
const SpanName = "statebox.set"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "statebox").
	TracerName string

	// TracerProvider supplies the tracer. If nil, otel.GetTracerProvider()
	// is used when the observer is created.
	TracerProvider trace.TracerProvider

	// TraceUnchanged also records writes that were gated by equality.
	// Disabled by default.
	TraceUnchanged bool

	// Filter determines which writes to trace.
	// Return true to trace the write, false to skip.
	// If nil, all writes are traced.
	Filter func(ev state.SetEvent) bool
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithTraceUnchanged enables spans for writes that did not change the value.
func WithTraceUnchanged(enabled bool) OTelOption {
	return func(c *OTelConfig) {
		c.TraceUnchanged = enabled
	}
}

// WithSetFilter sets a filter function for writes.
func WithSetFilter(filter func(ev state.SetEvent) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// Tracer is a state.Observer that records an OpenTelemetry span per write.
// Only writes carry a context, so subscription bookkeeping is not traced.
type Tracer struct {
	config OTelConfig
	tracer trace.Tracer
}

var _ state.Observer = (*Tracer)(nil)

// OpenTelemetry creates a Tracer observer.
//
// Spans are recorded after the write completes and back-dated to its start,
// so they cover lock wait and notification. The span's parent is taken from
// the context given to SetContext or SetterContext.
func OpenTelemetry(opts ...OTelOption) *Tracer {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}

	return &Tracer{
		config: config,
		tracer: config.TracerProvider.Tracer(config.TracerName),
	}
}

// OnSet implements state.Observer.
func (t *Tracer) OnSet(ctx context.Context, ev state.SetEvent) {
	if !ev.Changed && ev.Err == nil && !t.config.TraceUnchanged {
		return
	}
	if t.config.Filter != nil && !t.config.Filter(ev) {
		return
	}

	_, span := t.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(ev.Start),
		trace.WithAttributes(
			attribute.String("statebox.container", ev.Name),
			attribute.Bool("statebox.changed", ev.Changed),
			attribute.Int("statebox.notified", ev.Notified),
		),
	)

	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(ev.Start.Add(ev.Duration)))
}

// OnSubscribe implements state.Observer.
func (t *Tracer) OnSubscribe(string, int) {}

// OnUnsubscribe implements state.Observer.
func (t *Tracer) OnUnsubscribe(string, int, bool) {}

// OnCompact implements state.Observer.
func (t *Tracer) OnCompact(string, int) {}
