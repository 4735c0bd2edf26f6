//go:build windows

package crashguard

import (
	"os"

	"github.com/hectane/go-acl"
)

// ensureDumpDir creates the crash directory and restricts its ACL to the
// owner. Plain MkdirAll permission bits are advisory on Windows; the ACL
// is what actually keeps other accounts out of the dump files.
func ensureDumpDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return acl.Chmod(dir, 0o700)
}
