package mainstay

import "github.com/mainstaykit/mainstay/event"

// ///////////////////////////////////////////////
// Console Control Mapping
// ///////////////////////////////////////////////

// Console control codes. The numeric values are fixed by the Win32
// console API; keeping them here lets the mapping be exercised on every
// platform.
const (
	consoleCtrlC        = 0
	consoleCtrlBreak    = 1
	consoleCtrlClose    = 2
	consoleCtrlLogoff   = 5
	consoleCtrlShutdown = 6
)

// consoleDecision is the outcome of translating one console control
// event: which kind to post (if any) and whether to claim the event as
// handled toward the console host.
type consoleDecision struct {
	kind    event.Kind
	post    bool
	handled bool
}

// translateConsoleEvent maps a console control code to its decision.
//
// Ctrl+C, window close, and system shutdown always terminate: post one
// event and claim it handled. User logoff terminates interactive
// processes the same way, but a daemon ignores it (still handled, so the
// console host does not escalate). Ctrl+Break is recognized and
// swallowed without posting. Unrecognized codes are left to the next
// handler in the chain.
func translateConsoleEvent(code uint32, daemon bool) consoleDecision {
	switch code {
	case consoleCtrlC:
		return consoleDecision{kind: event.KindInterrupt, post: true, handled: true}
	case consoleCtrlClose:
		return consoleDecision{kind: event.KindClose, post: true, handled: true}
	case consoleCtrlShutdown:
		return consoleDecision{kind: event.KindShutdown, post: true, handled: true}
	case consoleCtrlLogoff:
		if daemon {
			return consoleDecision{kind: event.KindLogoff, post: false, handled: true}
		}
		return consoleDecision{kind: event.KindLogoff, post: true, handled: true}
	case consoleCtrlBreak:
		return consoleDecision{kind: event.KindBreak, post: false, handled: true}
	default:
		return consoleDecision{kind: event.KindUnknown, post: false, handled: false}
	}
}
