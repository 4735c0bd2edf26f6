// Unix/Darwin file locking using flock(2).
//
// Compiled on all non-Windows platforms (Linux, macOS, *BSD). POSIX
// advisory locking via [syscall.Flock] backs the single-instance check on
// the PID file.

//go:build !windows

package main

import (
	"fmt"
	"os"
	"syscall"
)

// ///////////////////////////////////////////////
// File Locking
// ///////////////////////////////////////////////

// lockFile acquires an exclusive, non-blocking advisory lock on f. LOCK_NB
// makes the call fail immediately (EWOULDBLOCK) when another process holds
// the lock, which is how a running instance is detected.
func lockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return fmt.Errorf("lock file %s: %w", f.Name(), err)
	}
	return nil
}

// unlockFile releases the advisory lock on f. Closing the descriptor also
// releases it implicitly.
func unlockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		return fmt.Errorf("unlock file %s: %w", f.Name(), err)
	}
	return nil
}
