package state

import "reflect"

// defaultEquals compares with == for basic kinds and falls back to
// reflect.DeepEqual for slices, maps, structs and everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return same(av, any(b))
	case int8:
		return same(av, any(b))
	case int16:
		return same(av, any(b))
	case int32:
		return same(av, any(b))
	case int64:
		return same(av, any(b))
	case uint:
		return same(av, any(b))
	case uint8:
		return same(av, any(b))
	case uint16:
		return same(av, any(b))
	case uint32:
		return same(av, any(b))
	case uint64:
		return same(av, any(b))
	case float32:
		return same(av, any(b))
	case float64:
		return same(av, any(b))
	case string:
		return same(av, any(b))
	case bool:
		return same(av, any(b))
	default:
		return reflect.DeepEqual(a, b)
	}
}

// same compares a basic value against b, which may hold a different dynamic
// type when T is an interface.
func same[V comparable](a V, b any) bool {
	bv, ok := b.(V)
	return ok && a == bv
}

// identity is the default copy function. Reference kinds (slices, maps,
// pointers) are shared with the caller; use WithCopy to deep-copy them.
func identity[T any](v T) T {
	return v
}
