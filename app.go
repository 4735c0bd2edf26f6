package mainstay

import "context"

// ///////////////////////////////////////////////
// Exit Codes
// ///////////////////////////////////////////////

// Exit codes returned by [Run]. Any other value is the application's own
// run result, passed through uninterpreted.
const (
	// ExitSuccess is a clean exit.
	ExitSuccess = 0
	// ExitInitFailure means Initialize failed; Run and Shutdown were
	// never invoked.
	ExitInitFailure = -1
	// ExitFault means the run body faulted; diagnostics were captured
	// and Shutdown was deliberately bypassed.
	ExitFault = -2
)

// ///////////////////////////////////////////////
// Application Contract
// ///////////////////////////////////////////////

// Application is the contract between a host program and [Run].
//
// Initialize, Run, and Shutdown are called in that order, each at most
// once per process. A failed Initialize means Run and Shutdown never
// execute. Shutdown executes exactly once after Run returns, except on a
// fault, where it is deliberately bypassed.
type Application interface {
	// Initialize prepares the application. Returning an error aborts the
	// entry sequence with ExitInitFailure.
	Initialize(ctx context.Context, rt *Runtime) error

	// Run is the application body. Its return value becomes the process
	// exit code. The context is canceled when the first termination
	// event posts; this is advisory, and Run decides when to return.
	Run(ctx context.Context, rt *Runtime) int

	// Shutdown releases what Initialize acquired.
	Shutdown()
}

// Funcs adapts plain functions to [Application]. Nil fields behave as
// no-ops; a nil OnRun returns ExitSuccess immediately.
type Funcs struct {
	OnInitialize func(ctx context.Context, rt *Runtime) error
	OnRun        func(ctx context.Context, rt *Runtime) int
	OnShutdown   func()
}

func (f Funcs) Initialize(ctx context.Context, rt *Runtime) error {
	if f.OnInitialize == nil {
		return nil
	}
	return f.OnInitialize(ctx, rt)
}

func (f Funcs) Run(ctx context.Context, rt *Runtime) int {
	if f.OnRun == nil {
		return ExitSuccess
	}
	return f.OnRun(ctx, rt)
}

func (f Funcs) Shutdown() {
	if f.OnShutdown != nil {
		f.OnShutdown()
	}
}
