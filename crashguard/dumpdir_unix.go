//go:build !windows

package crashguard

import "os"

// ensureDumpDir creates the crash directory with owner-only access.
func ensureDumpDir(dir string) error {
	return os.MkdirAll(dir, 0o700)
}
