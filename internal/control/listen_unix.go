// listen_unix.go implements the control endpoint transport for Unix-like
// systems using a unix domain socket in the data directory.

//go:build !windows

package control

import (
	"net"
	"os"
	"path/filepath"

	"github.com/mainstaykit/mainstay/internal/paths"
)

// Endpoint returns the control endpoint address for a data directory.
// The short name is unused here; it only matters in the Windows pipe
// namespace.
func Endpoint(dataDir, _ string) string {
	return filepath.Join(dataDir, paths.ControlSocket)
}

// listen binds the control socket, replacing any stale socket file left
// behind by a previous instance. The socket is owner-only.
func listen(endpoint string) (net.Listener, error) {
	if err := os.Remove(endpoint); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	ln, err := net.Listen("unix", endpoint)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(endpoint, 0o600); err != nil {
		ln.Close()
		return nil, err
	}
	return ln, nil
}

// dial connects to a control socket.
func dial(endpoint string) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, connTimeout)
}
