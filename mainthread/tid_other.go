//go:build !linux && !windows

package mainthread

import (
	"runtime"
	"strconv"
	"strings"
)

// threadID approximates a thread identity with the goroutine ID parsed from
// the runtime stack header. The entry goroutine is pinned to its thread by
// [Mark], so on platforms without a cheap thread ID syscall the goroutine
// identity distinguishes the marked thread from every other caller.
func threadID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header looks like "goroutine 12 [running]:".
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(s, ' '); i > 0 {
		if gid, err := strconv.ParseUint(s[:i], 10, 64); err == nil {
			return gid
		}
	}
	return 1
}
