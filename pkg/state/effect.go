package state

// Effect calls fn once with the zero value of T, then subscribes fn to every
// container. The handles are discarded, so an effect cannot be removed later.
//
// The priming call does not look at any container: with
//
//	n := state.UseState(7)
//	state.Effect(fn, n)
//
// fn first sees 0, then every later change of n.
func Effect[T any](fn Signal[T], containers ...*Container[T]) {
	var zero T
	fn(zero)
	for _, c := range containers {
		c.Subscribe(fn)
	}
}

// UseState creates a container holding initial. It is New under the name
// used by component code.
func UseState[T any](initial T, opts ...Option) *Container[T] {
	return New(initial, opts...)
}
