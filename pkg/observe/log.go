package observe

import (
	"context"
	"log/slog"

	"github.com/vango-dev/statebox/pkg/state"
)

// LogObserver is a state.Observer that writes one structured line per event.
type LogObserver struct {
	logger *slog.Logger
	level  slog.Level
}

var _ state.Observer = (*LogObserver)(nil)

// Logger creates a LogObserver that logs at debug level. Rejected writes
// are logged at warn level. If logger is nil, slog.Default() is used.
func Logger(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns the observer configured to log at level.
func (o *LogObserver) WithLevel(level slog.Level) *LogObserver {
	o.level = level
	return o
}

// OnSet implements state.Observer.
func (o *LogObserver) OnSet(ctx context.Context, ev state.SetEvent) {
	if ev.Err != nil {
		o.logger.WarnContext(ctx, "state set rejected",
			"container", ev.Name,
			"error", ev.Err)
		return
	}
	o.logger.Log(ctx, o.level, "state set",
		"container", ev.Name,
		"result", ev.Result(),
		"notified", ev.Notified,
		"duration", ev.Duration)
}

// OnSubscribe implements state.Observer.
func (o *LogObserver) OnSubscribe(name string, index int) {
	o.logger.Log(context.Background(), o.level, "state subscribe",
		"container", name, "index", index)
}

// OnUnsubscribe implements state.Observer.
func (o *LogObserver) OnUnsubscribe(name string, index int, ok bool) {
	o.logger.Log(context.Background(), o.level, "state unsubscribe",
		"container", name, "index", index, "ok", ok)
}

// OnCompact implements state.Observer.
func (o *LogObserver) OnCompact(name string, removed int) {
	o.logger.Log(context.Background(), o.level, "state compact",
		"container", name, "removed", removed)
}
