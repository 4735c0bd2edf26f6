package mainstay

import (
	"syscall"

	"github.com/mainstaykit/mainstay/event"
)

// ///////////////////////////////////////////////
// Signal Mapping
// ///////////////////////////////////////////////

// signalKinds maps POSIX termination signals to event kinds. SIGKILL is
// listed for completeness of the mapping, but the OS never delivers it
// to a handler, so no event with KindKill can originate here; only a
// host shell could report one. The syscall signal constants exist on
// every supported platform, which keeps this table portable even though
// subscription is unix-only.
var signalKinds = map[syscall.Signal]event.Kind{
	syscall.SIGINT:  event.KindInterrupt,
	syscall.SIGTERM: event.KindTerminate,
	syscall.SIGQUIT: event.KindQuit,
	syscall.SIGKILL: event.KindKill,
}

// kindForSignal returns the event kind for a delivered signal, or
// KindUnknown for signals outside the termination set.
func kindForSignal(sig syscall.Signal) event.Kind {
	if kind, ok := signalKinds[sig]; ok {
		return kind
	}
	return event.KindUnknown
}
