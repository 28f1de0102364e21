package variable

import "sync/atomic"

// globalIDCounter is the source of unique IDs for variables and notifier
// connections. Atomic so ID generation never takes a lock.
var globalIDCounter uint64

// nextID returns the next unique ID. IDs are monotonically increasing and
// never reused; 0 is never a valid ID.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
