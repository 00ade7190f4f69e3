package state

import "sync/atomic"

// keyCounter is the source of slot keys for every container in the process.
var keyCounter uint64

// nextKey returns a new slot key. Keys start at 1 and are never reused.
func nextKey() uint64 {
	return atomic.AddUint64(&keyCounter, 1)
}
