// Windows service control translation.
//
// When the process was started by the Service Control Manager, a handler
// goroutine runs svc.Run and converts Stop and Shutdown control requests
// into termination events. The service stays in the Running state until
// the dispatcher finishes; Execute then reports StopPending and returns.

//go:build windows

package mainstay

import (
	"log/slog"

	"golang.org/x/sys/windows/svc"

	"github.com/mainstaykit/mainstay/event"
)

// serviceHandler implements svc.Handler on top of the event stream.
type serviceHandler struct {
	rt      *Runtime
	stopped chan struct{}
}

// Execute is called by the Service Control Manager. Control requests are
// translated into events; the application decides when to stop, and the
// translator's Uninstall closes stopped to let the SCM know.
func (h *serviceHandler) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown

	changes <- svc.Status{State: svc.StartPending}
	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}

	for {
		select {
		case change := <-r:
			switch change.Cmd {
			case svc.Interrogate:
				changes <- change.CurrentStatus
			case svc.Stop:
				h.rt.Post(event.KindTerminate, event.SourceService)
			case svc.Shutdown:
				h.rt.Post(event.KindShutdown, event.SourceService)
			default:
				slog.Warn("unsupported service control request", "cmd", change.Cmd)
			}
		case <-h.stopped:
			changes <- svc.Status{State: svc.StopPending}
			return false, 0
		}
	}
}

// runService executes the service handler in a background goroutine.
// svc.Run blocks until Execute returns.
func runService(h *serviceHandler) {
	go func() {
		if err := svc.Run(h.rt.desc.ShortName, h); err != nil {
			slog.Error("service control handler failed", "error", err)
		}
	}()
}
