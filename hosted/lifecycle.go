// Package hosted adapts callback-driven host shells to the termination
// event stream.
//
// Some environments do not deliver signals or console control events to
// the process; instead an embedding shell calls lifecycle methods on it
// (launch, activation, termination). Lifecycle is the receiver for those
// calls. The launch and activation callbacks only record state; the
// termination callback runs the full ordered teardown sequence exactly
// once and converts the host's decision into a shutdown event on the
// stream.
package hosted

import (
	"log/slog"
	"sync"

	"github.com/mainstaykit/mainstay/event"
)

// Stream is the event sink the lifecycle posts to and drains during
// teardown. Satisfied by both event.Stream and the entry runtime.
type Stream interface {
	Post(kind event.Kind, source event.Source) bool
	Drain() []event.Event
}

// Hooks are the application-side teardown stages WillTerminate drives.
// Every hook is optional.
type Hooks struct {
	// PostLoop receives the events still pending on the stream after the
	// final shutdown event was posted, giving the application one last
	// pump before services stop.
	PostLoop func(pending []event.Event)
	// StopServices stops the application's core services.
	StopServices func()
	// Exit runs after platform resources are released, immediately before
	// retained state is dropped.
	Exit func()
	// ReleaseArgs drops the retained command line storage.
	ReleaseArgs func()
	// Finalize marks the process terminated. Always the last stage.
	Finalize func()
}

// Lifecycle receives host shell callbacks and turns the terminating one
// into an ordered, idempotent teardown.
type Lifecycle struct {
	stream Stream
	hooks  Hooks

	mu         sync.Mutex
	launched   bool
	active     bool
	terminated bool
	closers    []func() error
}

// New returns a lifecycle posting to stream and driving hooks on
// termination.
func New(stream Stream, hooks Hooks) *Lifecycle {
	return &Lifecycle{stream: stream, hooks: hooks}
}

// OnClose registers a platform resource closer to run during teardown.
// Closers run most recently registered first, like defer.
func (l *Lifecycle) OnClose(fn func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closers = append(l.closers, fn)
}

// DidFinishLaunching records that the host finished launching the process.
func (l *Lifecycle) DidFinishLaunching() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launched = true
	slog.Debug("host reported launch complete")
}

// DidBecomeActive records that the host brought the process to the
// foreground.
func (l *Lifecycle) DidBecomeActive() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = true
	slog.Debug("host reported activation")
}

// WillResignActive records that the host is about to background the
// process.
func (l *Lifecycle) WillResignActive() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
	slog.Debug("host reported deactivation")
}

// Active reports whether the host considers the process foreground.
func (l *Lifecycle) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Launched reports whether DidFinishLaunching has been received.
func (l *Lifecycle) Launched() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launched
}

// Terminated reports whether the teardown sequence has run.
func (l *Lifecycle) Terminated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.terminated
}

// WillTerminate runs the teardown sequence. The order is load-bearing:
// the shutdown event is posted first so the final pump sees it, services
// stop before the resources they hold are released, and retained state is
// dropped only after the application's exit hook has run. Repeat calls
// are no-ops.
func (l *Lifecycle) WillTerminate() {
	l.mu.Lock()
	if l.terminated {
		l.mu.Unlock()
		return
	}
	l.terminated = true
	l.active = false
	closers := l.closers
	l.closers = nil
	l.mu.Unlock()

	slog.Info("host requested termination")

	l.stream.Post(event.KindShutdown, event.SourceHost)
	pending := l.stream.Drain()
	if l.hooks.PostLoop != nil {
		l.hooks.PostLoop(pending)
	}
	if l.hooks.StopServices != nil {
		l.hooks.StopServices()
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			slog.Warn("resource closer failed during teardown", "error", err)
		}
	}
	if l.hooks.Exit != nil {
		l.hooks.Exit()
	}
	if l.hooks.ReleaseArgs != nil {
		l.hooks.ReleaseArgs()
	}
	if l.hooks.Finalize != nil {
		l.hooks.Finalize()
	}
}
