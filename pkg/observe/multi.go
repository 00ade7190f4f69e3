package observe

import (
	"context"

	"github.com/vango-dev/statebox/pkg/state"
)

type multi []state.Observer

// Multi returns an observer that forwards every event to each non-nil
// observer, in order.
func Multi(observers ...state.Observer) state.Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) OnSet(ctx context.Context, ev state.SetEvent) {
	for _, o := range m {
		o.OnSet(ctx, ev)
	}
}

func (m multi) OnSubscribe(name string, index int) {
	for _, o := range m {
		o.OnSubscribe(name, index)
	}
}

func (m multi) OnUnsubscribe(name string, index int, ok bool) {
	for _, o := range m {
		o.OnUnsubscribe(name, index, ok)
	}
}

func (m multi) OnCompact(name string, removed int) {
	for _, o := range m {
		o.OnCompact(name, removed)
	}
}
