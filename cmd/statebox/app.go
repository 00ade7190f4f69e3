package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/statebox/internal/config"
	"github.com/vango-dev/statebox/internal/errors"
	"github.com/vango-dev/statebox/pkg/observe"
	"github.com/vango-dev/statebox/pkg/snapshot"
	"github.com/vango-dev/statebox/pkg/state"
	"github.com/vango-dev/statebox/pkg/store"
)

// app holds everything serve builds from a Config.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	snapshots snapshot.Store
	registry  *prometheus.Registry
}

// newApp builds the containers declared in cfg. snapshots may be nil.
func newApp(cfg *config.Config, logger *slog.Logger, snapshots snapshot.Store) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		store:     store.New(),
		snapshots: snapshots,
	}

	observer := a.observer()
	for _, name := range slices.Sorted(maps.Keys(cfg.States)) {
		var initial any
		if err := json.Unmarshal(cfg.States[name], &initial); err != nil {
			return nil, errors.New("E200").
				WithDetail("State " + name + " has an invalid initial value").
				Wrap(err)
		}

		c := state.New(initial,
			state.WithName(name),
			state.WithLogger(logger),
			state.WithObserver(observer),
			state.WithNotifyMode(cfg.Mode()),
		).WithCopy(cloneJSON)

		if err := a.store.Register(c); err != nil {
			return nil, errors.New("E203").Wrap(err)
		}
	}
	return a, nil
}

func (a *app) observer() state.Observer {
	observers := []state.Observer{
		observe.Logger(a.logger).WithLevel(slog.LevelDebug),
	}

	if a.cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, observe.Prometheus(
			observe.WithNamespace(a.cfg.Metrics.Namespace),
			observe.WithRegistry(a.registry),
		))
	}

	if a.cfg.Tracing.Enabled {
		observers = append(observers, observe.OpenTelemetry(
			observe.WithTracerName(a.cfg.Tracing.TracerName),
			observe.WithTraceUnchanged(a.cfg.Tracing.TraceUnchanged),
		))
	}

	return observe.Multi(observers...)
}

// gatherer returns the metrics registry, or nil when metrics are disabled.
func (a *app) gatherer() prometheus.Gatherer {
	if a.registry == nil {
		return nil
	}
	return a.registry
}

// restore loads every container that has a snapshot.
func (a *app) restore(ctx context.Context) (int, error) {
	if a.snapshots == nil {
		return 0, nil
	}
	n, err := a.store.RestoreAll(ctx, a.snapshots)
	if err != nil {
		return n, errors.New("E302").Wrap(err)
	}
	return n, nil
}

// save snapshots every container.
func (a *app) save(ctx context.Context) error {
	if a.snapshots == nil {
		return nil
	}
	if err := a.store.SaveAll(ctx, a.snapshots); err != nil {
		return errors.New("E301").Wrap(err)
	}
	return nil
}

func (a *app) Close() error {
	if a.snapshots == nil {
		return nil
	}
	return a.snapshots.Close()
}

// openSnapshots returns the configured backend, or nil for "none".
func openSnapshots(cfg config.SnapshotConfig) (snapshot.Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMemory:
		return snapshot.NewMemoryStore(), nil
	case config.BackendS3:
		client := snapshot.NewS3Client(snapshot.S3Config{
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
		return snapshot.NewS3Store(client, cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, errors.New("E300").WithDetail("Unknown snapshot backend " + cfg.Backend)
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// cloneJSON deep-copies a decoded JSON value so values returned by Get do not
// alias the stored maps and slices.
func cloneJSON(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneJSON(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneJSON(e)
		}
		return out
	default:
		return v
	}
}
