package state

// Handle identifies one subscription. It is a Container[int] holding the
// slot index, or -1 once it has been used to unsubscribe, plus the key of the
// slot it was issued for.
//
// A handle does not reference its container and does not keep it alive.
// Signals must not be subscribed on a handle.
type Handle struct {
	*Container[int]

	key uint64
}

func newHandle(index int, key uint64) *Handle {
	return &Handle{Container: New(index), key: key}
}

// Index returns the slot index, or -1.
func (h *Handle) Index() int {
	return h.Get()
}

// Valid reports whether the handle has not been used to unsubscribe.
func (h *Handle) Valid() bool {
	return h.Get() >= 0
}

// Clone returns an independent handle for the same slot. It does not create
// a second subscription, and the two handles do not track each other: see
// Container.Unsubscribe.
func (h *Handle) Clone() *Handle {
	return &Handle{Container: h.Container.Clone(), key: h.key}
}

func (h *Handle) setIndex(index int) {
	if err := h.Set(index); err != nil {
		panic(err)
	}
}
