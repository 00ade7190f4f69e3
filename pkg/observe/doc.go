// Package observe provides state.Observer implementations for Prometheus,
// OpenTelemetry and log/slog.
//
// # Prometheus
//
//	metrics := observe.Prometheus(
//	    observe.WithNamespace("myapp"),
//	    observe.WithRegistry(reg),
//	)
//	count := state.New(0, state.WithName("count"), state.WithObserver(metrics))
//
// Metrics collected (namespace "statebox" by default):
//   - statebox_sets_total{container,result}: writes by result (changed, unchanged, error)
//   - statebox_notifications_total{container}: signals run
//   - statebox_notify_duration_seconds{container}: duration of changing writes
//   - statebox_subscriptions_total{container}
//   - statebox_unsubscriptions_total{container,result}: result is ok or rejected
//   - statebox_compacted_slots_total{container}
//
// # OpenTelemetry
//
// OpenTelemetry records one span per changing write, using the global tracer
// provider unless WithTracerProvider is given:
//
//	tracer := observe.OpenTelemetry(observe.WithTracerName("myapp"))
//
// # Combining
//
//	state.WithObserver(observe.Multi(metrics, tracer, observe.Logger(logger)))
package observe
