package state

// Signal is a callback registered on a Container. It receives the value that
// was just installed.
type Signal[T any] func(value T)

// slot is one entry in a container's signal list. A slot with a nil fn is a
// tombstone: it keeps its position so that the indices of later slots stay
// valid until the next Compact.
type slot[T any] struct {
	key uint64
	fn  Signal[T]
}

// active reports whether the slot still holds a signal.
func (s slot[T]) active() bool {
	return s.fn != nil
}

// tombstone returns the slot with its signal removed. The key is kept so a
// duplicate handle still recognises the position as its own.
func (s slot[T]) tombstone() slot[T] {
	return slot[T]{key: s.key}
}
