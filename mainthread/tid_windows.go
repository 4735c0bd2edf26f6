//go:build windows

package mainthread

import "golang.org/x/sys/windows"

// threadID returns the Win32 thread ID of the calling thread.
func threadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
