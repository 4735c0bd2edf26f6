//go:build linux

package mainthread

import "golang.org/x/sys/unix"

// threadID returns the kernel thread ID of the calling thread.
func threadID() uint64 {
	return uint64(unix.Gettid())
}
