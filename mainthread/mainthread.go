// Package mainthread records which OS thread entered the application and
// answers whether a caller is still on it.
//
// Platform facilities consumed by the entry layer (console control handler
// registration, hosted lifecycle callbacks, UI toolkits handed the process
// later) assume a stable notion of "the main thread". The marker pins the
// entry goroutine to its OS thread and stores that thread's identity once;
// there is no way to move or unset it for the life of the process.
package mainthread

import (
	"runtime"
	"sync/atomic"
)

var (
	// id is the identity of the marked thread. Zero means unmarked;
	// thread identities are nonzero on all supported platforms.
	id atomic.Uint64
	// marked flips to true once id is recorded and never back.
	marked atomic.Bool
)

// Mark pins the calling goroutine to its OS thread and records that thread
// as the process main thread. The first call wins and returns true. Any
// later call is a no-op returning false; it never silently replaces the
// recorded thread.
//
// The winning pin is left in place for the process lifetime so the
// recorded thread keeps servicing the entry goroutine.
func Mark() bool {
	runtime.LockOSThread()
	tid := threadID()
	if !id.CompareAndSwap(0, tid) {
		// Lost the race (or called twice). Undo the speculative pin taken
		// above; the winner's pin is unaffected.
		runtime.UnlockOSThread()
		return false
	}
	marked.Store(true)
	return true
}

// Marked reports whether the main thread has been recorded.
func Marked() bool {
	return marked.Load()
}

// Is reports whether the caller is running on the marked main thread.
// It returns false before Mark has been called. The answer for the
// marking goroutine is stable for the process lifetime.
func Is() bool {
	if !marked.Load() {
		return false
	}
	return threadID() == id.Load()
}

// ID returns the recorded main thread identity. The second return value
// is false before Mark has been called.
func ID() (uint64, bool) {
	if !marked.Load() {
		return 0, false
	}
	return id.Load(), true
}
