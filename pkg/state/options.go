package state

import "log/slog"

// NotifyMode selects whether signals run inside or outside the value lock.
type NotifyMode int

const (
	// NotifyLocked runs signals while the value lock is held. Notification
	// passes are serialized; a signal must not read or write the container
	// that is notifying it.
	NotifyLocked NotifyMode = iota

	// NotifyUnlocked releases the value lock before running signals. Signals
	// may read and write the container; passes from concurrent writers can
	// interleave and a panicking signal does not poison the container.
	NotifyUnlocked
)

// String returns the mode name used in configuration files.
func (m NotifyMode) String() string {
	switch m {
	case NotifyLocked:
		return "locked"
	case NotifyUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// ParseNotifyMode converts a configuration string to a NotifyMode.
// The empty string selects NotifyLocked.
func ParseNotifyMode(s string) (NotifyMode, bool) {
	switch s {
	case "", "locked":
		return NotifyLocked, true
	case "unlocked":
		return NotifyUnlocked, true
	default:
		return NotifyLocked, false
	}
}

// Option configures a Container.
type Option func(*options)

// options holds the type-independent container configuration.
type options struct {
	name     string
	logger   *slog.Logger
	observer Observer
	mode     NotifyMode
}

// WithName names the container. The name appears in logs, metrics labels,
// snapshot keys and the inspector.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for poisoning and compaction messages.
// If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver attaches an Observer. Use observe.Multi to attach several.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithNotifyMode selects the notification mode. Default: NotifyLocked.
func WithNotifyMode(mode NotifyMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// applyOptions applies opts on top of base.
func applyOptions(base options, opts []Option) options {
	for _, opt := range opts {
		opt(&base)
	}
	if base.logger == nil {
		base.logger = slog.Default()
	}
	return base
}
