// Package statebox is the short import for application code.
//
//	import "github.com/vango-dev/statebox"
//
// Usage:
//
//	count := statebox.UseState(0)
//	statebox.Effect(func(n int) { fmt.Println("count is", n) }, count)
//	count.Set(1)
//
// Everything here forwards to pkg/state, which holds the full API and its
// documentation.
package statebox

import (
	"github.com/vango-dev/statebox/pkg/state"
)

// =============================================================================
// Types
// =============================================================================

// Handle identifies one subscription.
type Handle = state.Handle

// Option configures a container.
type Option = state.Option

// Observer receives container events.
type Observer = state.Observer

// SetEvent describes one write.
type SetEvent = state.SetEvent

// Stats summarizes a container's slots.
type Stats = state.Stats

// NotifyMode selects whether signals run with the value lock held.
type NotifyMode = state.NotifyMode

// PoisonError is returned by writes to a poisoned container.
type PoisonError = state.PoisonError

const (
	NotifyLocked   = state.NotifyLocked
	NotifyUnlocked = state.NotifyUnlocked
)

// =============================================================================
// Options and errors
// =============================================================================

var (
	WithName       = state.WithName
	WithLogger     = state.WithLogger
	WithObserver   = state.WithObserver
	WithNotifyMode = state.WithNotifyMode
)

var (
	ErrPoisoned  = state.ErrPoisoned
	ErrNilSignal = state.ErrNilSignal
	ErrDecode    = state.ErrDecode
)

// =============================================================================
// Constructors
// =============================================================================

// New creates a container holding initial.
func New[T any](initial T, opts ...Option) *state.Container[T] {
	return state.New(initial, opts...)
}

// UseState creates a container holding initial.
func UseState[T any](initial T, opts ...Option) *state.Container[T] {
	return state.UseState(initial, opts...)
}

// Effect primes fn with the zero value of T and subscribes it to each
// container.
func Effect[T any](fn state.Signal[T], containers ...*state.Container[T]) {
	state.Effect(fn, containers...)
}
