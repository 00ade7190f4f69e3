// Package state provides a thread-safe observable value container.
//
// A Container holds one value of type T and an ordered list of signals
// (callbacks). Replacing the value with a non-equal one runs every active
// signal, in subscription order, on the caller's goroutine before Set
// returns. Writing an equal value is a no-op.
//
// # Usage
//
//	count := state.UseState(0)
//	h := count.Subscribe(func(v int) {
//	    fmt.Println("count is", v)
//	})
//
//	count.Set(5)        // prints "count is 5"
//	count.Unsubscribe(h) // true, h.Get() == -1
//	count.Set(6)        // prints nothing
//
// # Handles
//
// Subscribe returns a Handle: a Container[int] holding the slot index, or
// -1 once the handle has been used to unsubscribe. Unsubscribe leaves a
// tombstone in place so that other handles keep pointing at their slots.
// Compact removes tombstones and shifts the survivors down.
//
// Every slot carries a key that never changes, and so does the handle that
// created it. Unsubscribe refuses a handle whose index now points at a slot
// with a different key, so a handle that predates a Compact is rejected
// instead of removing someone else's signal. Rebind moves such a handle to
// the slot's current index.
//
// # Notification
//
// In the default NotifyLocked mode signals run while the value lock is held:
// notification passes never interleave, and a signal must not call Set,
// Setter or Get on the container that is notifying it (that deadlocks).
// Subscribe, Unsubscribe and Compact are allowed from a signal; they take
// effect from the next pass.
//
// NotifyUnlocked installs the value, releases the lock and then notifies.
// Signals may write back to the container, at the cost of passes from
// concurrent writers interleaving.
//
// # Poisoning
//
// A panic while the value lock is held (in a Setter transform, or in a
// signal under NotifyLocked) poisons the container. Set and Setter then
// return a *PoisonError and Get panics with it.
package state
