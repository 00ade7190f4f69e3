package observe

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/statebox/pkg/state"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "statebox").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "statebox",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a state.Observer that records Prometheus metrics.
// One Metrics can observe any number of containers; they are told apart by
// the container label, so give every observed container a name.
type Metrics struct {
	sets           *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	notifyDuration *prometheus.HistogramVec
	subscriptions  *prometheus.CounterVec
	unsubscribes   *prometheus.CounterVec
	compacted      *prometheus.CounterVec
}

var _ state.Observer = (*Metrics)(nil)

// Prometheus creates a Metrics observer and registers its collectors.
// It panics if the collectors are already registered with the registry,
// like promauto.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		sets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sets_total",
			Help:        "Total number of container writes by result",
			ConstLabels: config.ConstLabels,
		}, []string{"container", "result"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of signals run",
			ConstLabels: config.ConstLabels,
		}, []string{"container"}),

		notifyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_duration_seconds",
			Help:        "Duration of changing writes, including notification, in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"container"}),

		subscriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions_total",
			Help:        "Total number of signals subscribed",
			ConstLabels: config.ConstLabels,
		}, []string{"container"}),

		unsubscribes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unsubscriptions_total",
			Help:        "Total number of unsubscribe calls by result",
			ConstLabels: config.ConstLabels,
		}, []string{"container", "result"}),

		compacted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "compacted_slots_total",
			Help:        "Total number of tombstoned slots removed by compaction",
			ConstLabels: config.ConstLabels,
		}, []string{"container"}),
	}
}

// OnSet implements state.Observer.
func (m *Metrics) OnSet(_ context.Context, ev state.SetEvent) {
	m.sets.WithLabelValues(ev.Name, ev.Result()).Inc()
	if ev.Changed {
		m.notifications.WithLabelValues(ev.Name).Add(float64(ev.Notified))
		m.notifyDuration.WithLabelValues(ev.Name).Observe(ev.Duration.Seconds())
	}
}

// OnSubscribe implements state.Observer.
func (m *Metrics) OnSubscribe(name string, _ int) {
	m.subscriptions.WithLabelValues(name).Inc()
}

// OnUnsubscribe implements state.Observer.
func (m *Metrics) OnUnsubscribe(name string, _ int, ok bool) {
	m.unsubscribes.WithLabelValues(name, unsubscribeResult(ok)).Inc()
}

// OnCompact implements state.Observer.
func (m *Metrics) OnCompact(name string, removed int) {
	if removed > 0 {
		m.compacted.WithLabelValues(name).Add(float64(removed))
	}
}

func unsubscribeResult(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
