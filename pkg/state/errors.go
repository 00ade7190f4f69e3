package state

import (
	"errors"
	"fmt"
)

// ErrPoisoned matches every *PoisonError via errors.Is.
var ErrPoisoned = errors.New("state: container poisoned")

// ErrNilSignal is the panic value of Subscribe when given a nil signal.
var ErrNilSignal = errors.New("state: nil signal")

// ErrDecode is returned by SetJSON when the payload does not decode into
// the container's value type.
var ErrDecode = errors.New("state: decode value")

// PoisonError reports that a goroutine panicked while holding a container's
// value lock. The container's invariants may no longer hold, so it refuses
// further writes and Get panics.
type PoisonError struct {
	// Name is the name of the poisoned container (may be empty).
	Name string

	// Cause is the value recovered from the panic.
	Cause any
}

// Error implements the error interface.
func (e *PoisonError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("state: container %q poisoned: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("state: container poisoned: %v", e.Cause)
}

// Is reports whether target is ErrPoisoned.
func (e *PoisonError) Is(target error) bool {
	return target == ErrPoisoned
}
