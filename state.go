package mainstay

import "sync/atomic"

// ///////////////////////////////////////////////
// Lifecycle State
// ///////////////////////////////////////////////

// State is the phase of the process entry sequence. It moves strictly
// forward; the only branch is the choice between [StateRunning] and
// [StateRunningGuarded], which is fixed when the run phase starts and
// never revisited.
type State int32

const (
	// StateUninitialized is the state before Initialize has been attempted.
	StateUninitialized State = iota
	// StateInitialized means Initialize succeeded and the run phase has
	// not started yet.
	StateInitialized
	// StateRunning means the run body is executing directly, without
	// fault supervision.
	StateRunning
	// StateRunningGuarded means the run body is executing under the
	// crash guard.
	StateRunningGuarded
	// StateShuttingDown means the shutdown sequence is executing.
	StateShuttingDown
	// StateTerminated is the final state. Nothing follows it.
	StateTerminated
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateRunningGuarded:
		return "running-guarded"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return "invalid"
	}
}

// rank orders states for the forward-only rule. Running and RunningGuarded
// share a rank because they are alternatives, not a sequence.
func (s State) rank() int {
	switch s {
	case StateUninitialized:
		return 0
	case StateInitialized:
		return 1
	case StateRunning, StateRunningGuarded:
		return 2
	case StateShuttingDown:
		return 3
	case StateTerminated:
		return 4
	default:
		return -1
	}
}

// lifecycle holds the single process lifecycle value. Exactly one instance
// exists per entry sequence, owned by its [Runtime]; nothing else mutates
// it.
type lifecycle struct {
	v atomic.Int32
}

// current returns the present state.
func (l *lifecycle) current() State {
	return State(l.v.Load())
}

// advance moves the state forward. It returns false, leaving the state
// untouched, when the current state is not from or when to does not rank
// above it. Ranks may be skipped (a fault exit reaches Terminated without
// passing ShuttingDown); the sequence never moves backward.
func (l *lifecycle) advance(from, to State) bool {
	if to.rank() <= from.rank() {
		return false
	}
	return l.v.CompareAndSwap(int32(from), int32(to))
}
