package state

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Container is an observable value. The zero Container is not usable; create
// one with New, NewFrom or UseState.
type Container[T any] struct {
	// mu guards value and poison.
	mu     sync.RWMutex
	value  T
	poison *PoisonError

	// subMu guards slots. It is never held while a signal runs.
	subMu sync.RWMutex
	slots []slot[T]

	// equal decides whether a write changes the value.
	equal func(a, b T) bool

	// dup duplicates a value for Get, Clone and Setter transforms.
	dup func(T) T

	opts options
}

// New creates a container holding initial, with no signals.
func New[T any](initial T, opts ...Option) *Container[T] {
	return newContainer(initial, defaultEquals[T], identity[T], applyOptions(options{}, opts))
}

// NewFrom creates a container holding a copy of other's current value.
// Equality and copy functions are inherited, signals are not: the new
// container starts with zero slots. Options override the name, logger,
// observer and notify mode inherited from other.
func NewFrom[T any](other *Container[T], opts ...Option) *Container[T] {
	return newContainer(other.Get(), other.equal, other.dup, applyOptions(other.opts, opts))
}

func newContainer[T any](initial T, equal func(a, b T) bool, dup func(T) T, opts options) *Container[T] {
	if opts.observer == nil {
		opts.observer = nopObserver{}
	}
	return &Container[T]{
		value: initial,
		equal: equal,
		dup:   dup,
		opts:  opts,
	}
}

// WithEquals sets the equality function used to gate writes. It returns the
// container for chaining and must be called before the container is shared.
func (c *Container[T]) WithEquals(fn func(a, b T) bool) *Container[T] {
	if fn == nil {
		fn = defaultEquals[T]
	}
	c.equal = fn
	return c
}

// WithCopy sets the function used to duplicate the value, for types whose
// plain Go copy shares memory (slices, maps, pointers). It returns the
// container for chaining and must be called before the container is shared.
func (c *Container[T]) WithCopy(fn func(T) T) *Container[T] {
	if fn == nil {
		fn = identity[T]
	}
	c.dup = fn
	return c
}

// Name returns the name set with WithName.
func (c *Container[T]) Name() string {
	return c.opts.name
}

// Get returns a duplicate of the current value.
// It panics with a *PoisonError if the container is poisoned.
func (c *Container[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.poison != nil {
		panic(c.poison)
	}
	return c.dup(c.value)
}

// Set replaces the value and notifies every active signal, in subscription
// order, if value is not equal to the current one. Writing an equal value
// does nothing and returns nil. A poisoned container returns *PoisonError.
func (c *Container[T]) Set(value T) error {
	return c.SetContext(context.Background(), value)
}

// SetContext is Set with a context handed to the Observer.
func (c *Container[T]) SetContext(ctx context.Context, value T) error {
	return c.update(ctx, func(T) T { return value })
}

// Setter replaces the value with fn(current). The read, the transform and the
// conditional write happen under one acquisition of the value lock, so
// concurrent Setters never lose updates. fn receives a duplicate of the
// current value and must not touch the container.
func (c *Container[T]) Setter(fn func(T) T) error {
	return c.SetterContext(context.Background(), fn)
}

// SetterContext is Setter with a context handed to the Observer.
func (c *Container[T]) SetterContext(ctx context.Context, fn func(T) T) error {
	return c.update(ctx, fn)
}

func (c *Container[T]) update(ctx context.Context, fn func(T) T) error {
	ev := SetEvent{Name: c.opts.name, Start: time.Now()}
	defer func() {
		r := recover()
		if r != nil {
			ev.Err = c.panicError(r)
		}
		ev.Duration = time.Since(ev.Start)
		c.opts.observer.OnSet(ctx, ev)
		if r != nil {
			panic(r)
		}
	}()
	ev.Changed, ev.Notified, ev.Err = c.apply(fn)
	return ev.Err
}

// panicError is the error reported for a write that panicked: the poison if
// the panic happened under the value lock, otherwise a plain wrapper.
func (c *Container[T]) panicError(r any) error {
	c.mu.RLock()
	poison := c.poison
	c.mu.RUnlock()
	if poison != nil {
		return poison
	}
	return fmt.Errorf("state: signal panicked: %v", r)
}

// apply runs fn and the conditional write under the value lock. A panic while
// the lock is held poisons the container before it propagates.
func (c *Container[T]) apply(fn func(T) T) (changed bool, notified int, err error) {
	c.mu.Lock()
	held := true
	defer func() {
		if !held {
			return
		}
		if r := recover(); r != nil {
			c.poison = &PoisonError{Name: c.opts.name, Cause: r}
			c.mu.Unlock()
			c.opts.logger.Error("state: container poisoned", "container", c.opts.name, "panic", r)
			panic(r)
		}
		c.mu.Unlock()
	}()

	if c.poison != nil {
		return false, 0, c.poison
	}

	next := fn(c.dup(c.value))
	if c.equal(c.value, next) {
		return false, 0, nil
	}
	c.value = next

	if c.opts.mode == NotifyUnlocked {
		held = false
		c.mu.Unlock()
	}
	return true, c.notify(next), nil
}

// notify runs the active signals against a copy of the slot list, so signals
// may subscribe or unsubscribe without deadlocking; such changes apply from
// the next pass.
func (c *Container[T]) notify(value T) int {
	c.subMu.RLock()
	slots := make([]slot[T], len(c.slots))
	copy(slots, c.slots)
	c.subMu.RUnlock()

	n := 0
	for _, s := range slots {
		if s.active() {
			s.fn(value)
			n++
		}
	}
	return n
}

// Subscribe appends fn to the signal list and returns a handle holding its
// index. It panics with ErrNilSignal if fn is nil.
func (c *Container[T]) Subscribe(fn Signal[T]) *Handle {
	if fn == nil {
		panic(ErrNilSignal)
	}
	key := nextKey()

	c.subMu.Lock()
	c.slots = append(c.slots, slot[T]{key: key, fn: fn})
	index := len(c.slots) - 1
	c.subMu.Unlock()

	c.opts.observer.OnSubscribe(c.opts.name, index)
	return newHandle(index, key)
}

// Unsubscribe tombstones the slot h points at and sets h to -1.
//
// It returns false, changing nothing, if h is nil, its index is negative or
// out of range, or the slot at that index was not created by h's
// subscription (the handle went stale in a Compact; see Rebind).
//
// A handle duplicated with Handle.Clone shares the slot: unsubscribing
// through one duplicate resets only that duplicate, and the other one can
// still unsubscribe (again) and returns true.
func (c *Container[T]) Unsubscribe(h *Handle) bool {
	if h == nil {
		return false
	}
	index := h.Get()
	ok := c.tombstone(index, h.key)
	if ok {
		h.setIndex(-1)
	}
	c.opts.observer.OnUnsubscribe(c.opts.name, index, ok)
	return ok
}

func (c *Container[T]) tombstone(index int, key uint64) bool {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if index < 0 || index >= len(c.slots) {
		return false
	}
	if c.slots[index].key != key {
		c.opts.logger.Debug("state: stale handle rejected",
			"container", c.opts.name, "index", index)
		return false
	}
	c.slots[index] = c.slots[index].tombstone()
	return true
}

// Rebind points h at the current index of its active slot, after a Compact
// shifted it. It returns false if no active slot belongs to h.
func (c *Container[T]) Rebind(h *Handle) bool {
	if h == nil {
		return false
	}

	index := -1
	c.subMu.RLock()
	for i, s := range c.slots {
		if s.key == h.key && s.active() {
			index = i
			break
		}
	}
	c.subMu.RUnlock()

	if index < 0 {
		return false
	}
	h.setIndex(index)
	return true
}

// Compact removes every tombstone, keeping the surviving signals in order,
// and returns how many slots were removed. Surviving slots move down by the
// number of tombstones before them; handles created earlier are rejected by
// Unsubscribe until Rebind is called on them.
func (c *Container[T]) Compact() int {
	c.subMu.Lock()
	kept := c.slots[:0]
	for _, s := range c.slots {
		if s.active() {
			kept = append(kept, s)
		}
	}
	removed := len(c.slots) - len(kept)
	clear(c.slots[len(kept):])
	c.slots = kept
	remaining := len(kept)
	c.subMu.Unlock()

	if removed > 0 {
		c.opts.logger.Debug("state: compacted signals",
			"container", c.opts.name, "removed", removed, "remaining", remaining)
	}
	c.opts.observer.OnCompact(c.opts.name, removed)
	return removed
}

// Clone returns an independent container with a duplicate of the value and a
// parallel signal list: every active slot is re-registered with the same
// signal and every tombstone is kept at its position, so handles issued by c
// address the same slots in the clone. Later writes to either container never
// notify the other's signals.
func (c *Container[T]) Clone() *Container[T] {
	clone := newContainer(c.Get(), c.equal, c.dup, c.opts)

	c.subMu.RLock()
	clone.slots = make([]slot[T], len(c.slots))
	copy(clone.slots, c.slots)
	c.subMu.RUnlock()

	return clone
}

// Stats is a point-in-time summary of a container.
type Stats struct {
	Slots      int  `json:"slots"`
	Active     int  `json:"active"`
	Tombstoned int  `json:"tombstoned"`
	Poisoned   bool `json:"poisoned"`
}

// Stats returns slot counts and the poison flag.
func (c *Container[T]) Stats() Stats {
	var st Stats

	c.subMu.RLock()
	st.Slots = len(c.slots)
	for _, s := range c.slots {
		if s.active() {
			st.Active++
		}
	}
	c.subMu.RUnlock()
	st.Tombstoned = st.Slots - st.Active

	st.Poisoned = c.Poisoned()
	return st
}

// Poisoned reports whether a panic poisoned the container.
func (c *Container[T]) Poisoned() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.poison != nil
}
