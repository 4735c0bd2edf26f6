// listen_windows.go implements the control endpoint transport for Windows
// using a named pipe via the go-winio library.

//go:build windows

package control

import (
	"net"
	"time"

	"github.com/Microsoft/go-winio"

	"github.com/mainstaykit/mainstay/internal/paths"
)

// restrictedSDDL limits pipe access to built-in administrators and the
// local system account.
const restrictedSDDL = "D:P(A;;GA;;;BA)(A;;GA;;;SY)"

// Endpoint returns the control endpoint address for a short name. The
// data directory is unused on Windows; pipes live in the pipe namespace.
func Endpoint(_, shortName string) string {
	return paths.ControlPipeName(shortName)
}

// listen creates the control pipe with a restricted security descriptor.
func listen(endpoint string) (net.Listener, error) {
	return winio.ListenPipe(endpoint, &winio.PipeConfig{
		SecurityDescriptor: restrictedSDDL,
	})
}

// dial connects to a control pipe.
func dial(endpoint string) (net.Conn, error) {
	timeout := connTimeout
	return winio.DialPipe(endpoint, &timeout)
}
