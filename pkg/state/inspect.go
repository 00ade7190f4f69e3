package state

import (
	"context"
	"encoding/json"
	"fmt"
)

// Inspectable is the type-erased view of a Container used by the registry,
// snapshot and inspector packages. Values cross it as JSON.
type Inspectable interface {
	Name() string
	Stats() Stats

	// ValueJSON encodes the current value.
	ValueJSON() ([]byte, error)

	// SetJSON decodes data into the value type and sets it.
	SetJSON(ctx context.Context, data []byte) error

	// SubscribeJSON subscribes fn with each new value encoded as JSON.
	SubscribeJSON(fn func(data []byte)) *Handle

	Unsubscribe(h *Handle) bool
	Rebind(h *Handle) bool
	Compact() int
}

var _ Inspectable = (*Container[any])(nil)

// ValueJSON encodes the current value as JSON.
func (c *Container[T]) ValueJSON() ([]byte, error) {
	return json.Marshal(c.Get())
}

// SetJSON decodes data into a fresh T and sets it. Decode failures wrap
// ErrDecode.
func (c *Container[T]) SetJSON(ctx context.Context, data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return c.SetContext(ctx, v)
}

// SubscribeJSON subscribes fn, passing each new value encoded as JSON.
// Values that fail to encode are logged and skipped.
func (c *Container[T]) SubscribeJSON(fn func(data []byte)) *Handle {
	return c.Subscribe(func(v T) {
		data, err := json.Marshal(v)
		if err != nil {
			c.opts.logger.Error("state: encode value", "container", c.opts.name, "error", err)
			return
		}
		fn(data)
	})
}
