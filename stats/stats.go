// Package stats defines the collector interface through which the entry
// layer reports lifecycle activity.
//
// The core calls these methods at most a handful of times per process, so
// implementations do not need to be cheap, only safe for concurrent use.
// Arguments are plain strings and numbers to keep implementations free of
// entry-layer types.
package stats

import "time"

// Collector receives lifecycle activity notices. Implementations must be
// safe for concurrent use; events are reported from notification handler
// goroutines as well as the entry goroutine.
type Collector interface {
	// EventPosted is called after a termination event is admitted to the
	// stream. kind and source are the event's lowercase names.
	EventPosted(kind, source string)
	// EventDropped is called when a termination event is discarded
	// because the stream buffer was full.
	EventDropped(kind, source string)
	// StateChanged is called after each lifecycle state transition.
	StateChanged(state string)
	// RunCompleted is called when the run body returns. guarded reports
	// whether the crash guard was engaged.
	RunCompleted(code int, guarded bool)
	// FaultCaptured is called when the crash guard captures a fault.
	// name is the crash context name.
	FaultCaptured(name string)
	// ShutdownCompleted is called after the shutdown sequence finishes,
	// with its duration.
	ShutdownCompleted(d time.Duration)
}

// NoopCollector is a Collector that discards everything. It is the
// default when no collector is configured.
type NoopCollector struct{}

// EventPosted implements [Collector].
func (NoopCollector) EventPosted(kind, source string) {}

// EventDropped implements [Collector].
func (NoopCollector) EventDropped(kind, source string) {}

// StateChanged implements [Collector].
func (NoopCollector) StateChanged(state string) {}

// RunCompleted implements [Collector].
func (NoopCollector) RunCompleted(code int, guarded bool) {}

// FaultCaptured implements [Collector].
func (NoopCollector) FaultCaptured(name string) {}

// ShutdownCompleted implements [Collector].
func (NoopCollector) ShutdownCompleted(d time.Duration) {}
