package mainstay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mainstaykit/mainstay/event"
	"github.com/mainstaykit/mainstay/internal/config"
	"github.com/mainstaykit/mainstay/internal/logger"
	"github.com/mainstaykit/mainstay/stats"
)

// ///////////////////////////////////////////////
// Runtime
// ///////////////////////////////////////////////

// Runtime is the per-process entry state handed to the application. It
// owns the lifecycle state, the termination event stream, the stats
// collector, the retained command line, and the background services
// started alongside the run body.
type Runtime struct {
	desc      Descriptor
	cfg       atomic.Pointer[config.Config]
	stream    *event.Stream
	collector stats.Collector
	state     lifecycle

	// logLevel is the reload target for dynamic log level changes. Nil
	// when the host supplied its own logger.
	logLevel   *slog.LevelVar
	dataDir    string
	configPath string

	args atomic.Pointer[[]string]

	cancelRun  context.CancelFunc
	cancelOnce sync.Once

	mu      sync.Mutex
	closers []func() error

	services *errgroup.Group
	svcCtx   context.Context
	svcStop  context.CancelFunc
}

func newRuntime(desc Descriptor, cfg *config.Config, o *options) *Runtime {
	capacity := cfg.Events.Buffer
	if o.streamCapacity > 0 {
		capacity = o.streamCapacity
	}

	collector := o.collector
	if collector == nil {
		collector = stats.NoopCollector{}
	}

	args := o.args
	if args == nil {
		args = argsFromProcess()
	}

	svcCtx, svcStop := context.WithCancel(context.Background())
	g, svcCtx := errgroup.WithContext(svcCtx)

	rt := &Runtime{
		desc:      desc,
		stream:    event.NewStream(capacity),
		collector: collector,
		logLevel:  o.logLevel,
		dataDir:   o.dataDir,
		services:  g,
		svcCtx:    svcCtx,
		svcStop:   svcStop,
	}
	rt.cfg.Store(cfg)
	rt.args.Store(&args)
	if o.dataDir != "" {
		rt.configPath = dataPaths(o.dataDir).Config()
	}
	return rt
}

// Descriptor returns the application descriptor, version resolved.
func (rt *Runtime) Descriptor() Descriptor {
	return rt.desc
}

// Config returns the current configuration. The pointer is replaced
// wholesale on reload; callers must not mutate it.
func (rt *Runtime) Config() *config.Config {
	return rt.cfg.Load()
}

// State returns the current lifecycle state.
func (rt *Runtime) State() State {
	return rt.state.current()
}

// Daemon reports whether the process runs as a background service, from
// either the descriptor or the configuration.
func (rt *Runtime) Daemon() bool {
	return rt.desc.Daemon || rt.Config().Application.Daemon
}

// Args returns the retained command line, or nil after it has been
// released during teardown.
func (rt *Runtime) Args() []string {
	if p := rt.args.Load(); p != nil {
		return *p
	}
	return nil
}

// ReleaseArgs drops the retained command line storage.
func (rt *Runtime) ReleaseArgs() {
	rt.args.Store(nil)
}

// ///////////////////////////////////////////////
// Event Stream
// ///////////////////////////////////////////////

// Post converts one notification into a termination event on the stream.
// Safe from any goroutine, including foreign-thread callbacks; it never
// blocks. Returns false when the stream was full and the event was
// dropped (still counted). A terminal kind also cancels the run context,
// advisory only.
func (rt *Runtime) Post(kind event.Kind, source event.Source) bool {
	delivered := rt.stream.Post(kind, source)
	if delivered {
		rt.collector.EventPosted(kind.String(), source.String())
	} else {
		rt.collector.EventDropped(kind.String(), source.String())
		slog.Warn("termination event dropped, stream full", "kind", kind.String(), "source", source.String())
	}
	if kind.Terminal() {
		rt.cancelRunContext()
	}
	return delivered
}

// Events is the termination event stream. Single consumer: the
// application's pump.
func (rt *Runtime) Events() <-chan event.Event {
	return rt.stream.Events()
}

// Drain returns all currently pending events without blocking.
func (rt *Runtime) Drain() []event.Event {
	return rt.stream.Drain()
}

// Dropped returns how many events were dropped because the stream was at
// capacity.
func (rt *Runtime) Dropped() uint64 {
	return rt.stream.Dropped()
}

func (rt *Runtime) installRunCancel(cancel context.CancelFunc) {
	rt.cancelRun = cancel
}

func (rt *Runtime) cancelRunContext() {
	rt.cancelOnce.Do(func() {
		if rt.cancelRun != nil {
			rt.cancelRun()
		}
	})
}

// ///////////////////////////////////////////////
// Lifecycle State
// ///////////////////////////////////////////////

// setState advances the lifecycle state. Transitions only move forward;
// an out-of-order request is ignored and logged.
func (rt *Runtime) setState(to State) {
	from := rt.state.current()
	if !rt.state.advance(from, to) {
		slog.Debug("lifecycle state change rejected", "from", from.String(), "to", to.String())
		return
	}
	rt.collector.StateChanged(to.String())
	slog.Debug("lifecycle state changed", "from", from.String(), "to", to.String())
}

// ///////////////////////////////////////////////
// Background Services
// ///////////////////////////////////////////////

// StartService runs fn under the runtime's supervision group. The
// context is canceled when shutdown begins or when another service
// fails. A service returning a non-context error is logged and cancels
// the group.
func (rt *Runtime) StartService(name string, fn func(ctx context.Context) error) {
	rt.services.Go(func() error {
		if err := fn(rt.svcCtx); err != nil && !errorIsCanceled(err) {
			slog.Error("background service failed", "service", name, "error", err)
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

// stopServices cancels the supervision group and waits for every service
// to return.
func (rt *Runtime) stopServices() {
	rt.svcStop()
	if err := rt.services.Wait(); err != nil && !errorIsCanceled(err) {
		slog.Warn("background services stopped with error", "error", err)
	}
}

func errorIsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ///////////////////////////////////////////////
// Resource Closers
// ///////////////////////////////////////////////

// OnClose registers a resource to release during the shutdown sequence.
// Closers run most recently registered first, like defer.
func (rt *Runtime) OnClose(fn func() error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.closers = append(rt.closers, fn)
}

func (rt *Runtime) closeResources() {
	rt.mu.Lock()
	closers := rt.closers
	rt.closers = nil
	rt.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			slog.Warn("resource closer failed during shutdown", "error", err)
		}
	}
}

// ///////////////////////////////////////////////
// Config Reload
// ///////////////////////////////////////////////

// ReloadConfig re-reads the config file and applies the dynamic subset
// (currently the log level). It never posts termination events. A reload
// with no config file, or with an invalid file, is a logged no-op.
func (rt *Runtime) ReloadConfig() {
	if rt.configPath == "" {
		return
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		slog.Warn("config reload failed, keeping previous config", "error", err)
		return
	}
	rt.applyConfig(cfg)
}

func (rt *Runtime) applyConfig(cfg *config.Config) {
	if rt.logLevel != nil {
		rt.logLevel.Set(logger.ParseLevel(cfg.Log.Level))
	}
	rt.cfg.Store(cfg)
	slog.Info("configuration reloaded", "log_level", cfg.Log.Level)
}
