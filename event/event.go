// Package event defines the termination event descriptors that platform
// notification handlers post and the application event pump consumes.
//
// Handlers run on foreign threads (console control threads, signal
// goroutines, service control handlers), so the package is built around a
// fixed-capacity stream that is safe to post to from any of them without
// blocking or allocating beyond its preallocated buffer.
package event

import "time"

// ///////////////////////////////////////////////
// Kinds
// ///////////////////////////////////////////////

// Kind identifies the platform condition a termination event describes.
// The same set of kinds is used on every platform; which kinds can actually
// occur depends on the installed translator.
type Kind int

const (
	// KindUnknown is the zero Kind. It is never posted by the translators
	// and marks a descriptor that was not filled in.
	KindUnknown Kind = iota
	// KindInterrupt is an interactive interrupt: Ctrl+C on a console,
	// SIGINT on POSIX systems.
	KindInterrupt
	// KindTerminate is a polite external termination request: SIGTERM,
	// a service-control stop, or a control endpoint stop command.
	KindTerminate
	// KindQuit is a quit-with-diagnostics request (SIGQUIT).
	KindQuit
	// KindKill is the uncatchable kill signal. It appears in the signal
	// table for completeness but can never be observed by a handler.
	KindKill
	// KindClose reports the hosting console window being closed.
	KindClose
	// KindLogoff reports the interactive user logging off.
	KindLogoff
	// KindShutdown reports the operating system shutting down.
	KindShutdown
	// KindBreak is Ctrl+Break. It is acknowledged by the console handler
	// but never posted; it exists so mappings can name it.
	KindBreak
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInterrupt:
		return "interrupt"
	case KindTerminate:
		return "terminate"
	case KindQuit:
		return "quit"
	case KindKill:
		return "kill"
	case KindClose:
		return "close"
	case KindLogoff:
		return "logoff"
	case KindShutdown:
		return "shutdown"
	case KindBreak:
		return "break"
	default:
		return "unknown"
	}
}

// Terminal reports whether the kind describes a condition after which the
// process is expected to exit. KindBreak and KindUnknown are the only
// non-terminal kinds.
func (k Kind) Terminal() bool {
	switch k {
	case KindInterrupt, KindTerminate, KindQuit, KindKill, KindClose, KindLogoff, KindShutdown:
		return true
	default:
		return false
	}
}

// ///////////////////////////////////////////////
// Sources
// ///////////////////////////////////////////////

// Source identifies which translator produced an event.
type Source int

const (
	// SourceUnknown is the zero Source.
	SourceUnknown Source = iota
	// SourceSignal marks events produced by the POSIX signal translator.
	SourceSignal
	// SourceConsole marks events produced by the console control handler.
	SourceConsole
	// SourceService marks events produced by the Windows service control
	// handler.
	SourceService
	// SourceHost marks events produced by hosted lifecycle callbacks.
	SourceHost
	// SourceControl marks events produced by the local control endpoint.
	SourceControl
)

// String returns the lowercase name of the source.
func (s Source) String() string {
	switch s {
	case SourceSignal:
		return "signal"
	case SourceConsole:
		return "console"
	case SourceService:
		return "service"
	case SourceHost:
		return "host"
	case SourceControl:
		return "control"
	default:
		return "unknown"
	}
}

// ///////////////////////////////////////////////
// Event
// ///////////////////////////////////////////////

// Event is one termination notification translated into process-internal
// form. Values are immutable once posted; each distinct platform
// notification produces at most one Event.
type Event struct {
	// Kind is the translated condition.
	Kind Kind
	// Source is the translator that produced the event.
	Source Source
	// Seq is the stream-wide production sequence number, starting at 1.
	Seq uint64
	// Time is when the event was posted.
	Time time.Time
}
