// Package crashguard supervises the run phase of a process and captures
// diagnostics when it faults.
//
// A fault in Go code surfaces as a panic: runtime faults (nil dereference,
// out-of-range index, division by zero) and explicit panics all arrive the
// same way. [Call] recovers the panic, snapshots the process, writes a
// crash report, invokes the registered dump callback, and reports the
// fault to its caller so the process can exit without running its normal
// shutdown sequence. Faults are captured exactly once and never retried.
package crashguard

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// ///////////////////////////////////////////////
// Fault
// ///////////////////////////////////////////////

// Fault describes one captured fault.
type Fault struct {
	// Value is the recovered panic value.
	Value any
	// Stack is the all-goroutine stack dump taken at capture time.
	Stack []byte
	// Time is when the fault was captured.
	Time time.Time
}

// Message returns a one-line description of the fault.
func (f *Fault) Message() string {
	return fmt.Sprintf("%v", f.Value)
}

// ///////////////////////////////////////////////
// Guarded Call
// ///////////////////////////////////////////////

// Call runs fn under fault supervision. When fn returns normally its code
// is passed through unchanged and fault is nil. When fn faults, Call
// captures the fault, writes a crash report through ctx (best effort),
// invokes the dump callback, and returns the fault; code is meaningless in
// that case.
//
// A nil ctx falls back to the process default context installed with
// [SetDefault].
func Call(ctx *Context, fn func() int) (code int, fault *Fault) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		fault = &Fault{
			Value: r,
			Stack: allStacks(),
			Time:  time.Now(),
		}
		capture(ctx, fault)
	}()
	return fn(), nil
}

// capture persists and announces a fault. Every step is best effort: a
// failure to write or upload the report must never mask the fault itself.
func capture(ctx *Context, f *Fault) {
	if ctx == nil {
		ctx = Default()
	}
	if ctx == nil {
		slog.Error("fault captured with no crash context installed", "panic", f.Message())
		return
	}

	report := NewReport(ctx.Name, f)
	if ctx.Store != nil {
		path, err := ctx.Store.Write(report)
		if err != nil {
			slog.Error("failed to write crash report", "error", err)
		} else {
			slog.Error("fault captured", "context", ctx.Name, "report", path, "panic", f.Message())
		}
	} else {
		slog.Error("fault captured", "context", ctx.Name, "panic", f.Message())
	}

	if ctx.Uploader != nil {
		if err := ctx.Uploader.Upload(report); err != nil {
			slog.Warn("crash report upload failed", "error", err)
		}
	}

	if ctx.Dump != nil {
		ctx.Dump(ctx.Name)
	}
}

// allStacks returns a stack dump of every goroutine, growing the buffer
// until the dump fits (capped at 4 MiB).
func allStacks() []byte {
	size := 64 << 10
	for {
		buf := make([]byte, size)
		n := runtime.Stack(buf, true)
		if n < size || size >= 4<<20 {
			return buf[:n]
		}
		size *= 2
	}
}
