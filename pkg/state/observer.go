package state

import (
	"context"
	"time"
)

// Observer receives container events. Methods are called after every lock
// has been released, on the goroutine that performed the operation, so an
// Observer may inspect the container but should return quickly.
type Observer interface {
	// OnSet is called once per Set or Setter, including no-op writes,
	// writes rejected because the container is poisoned, and writes that
	// panic (reported with Err set, before the panic propagates).
	OnSet(ctx context.Context, ev SetEvent)

	// OnSubscribe is called after a signal was appended at index.
	OnSubscribe(name string, index int)

	// OnUnsubscribe is called for every Unsubscribe; ok is its result.
	OnUnsubscribe(name string, index int, ok bool)

	// OnCompact is called after Compact with the number of removed slots.
	OnCompact(name string, removed int)
}

// SetEvent describes one write attempt.
type SetEvent struct {
	// Name is the container name.
	Name string

	// Changed is true when the value was replaced.
	Changed bool

	// Notified is the number of signals that ran.
	Notified int

	// Start is when the write began waiting for the lock.
	Start time.Time

	// Duration covers lock wait, comparison and notification.
	Duration time.Duration

	// Err is non-nil when the write was rejected.
	Err error
}

// Result returns "changed", "unchanged" or "error".
func (ev SetEvent) Result() string {
	switch {
	case ev.Err != nil:
		return "error"
	case ev.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}

// nopObserver is used when no observer is configured.
type nopObserver struct{}

func (nopObserver) OnSet(context.Context, SetEvent) {}
func (nopObserver) OnSubscribe(string, int)         {}
func (nopObserver) OnUnsubscribe(string, int, bool) {}
func (nopObserver) OnCompact(string, int)           {}
