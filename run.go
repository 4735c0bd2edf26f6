// Package mainstay implements process entry and termination lifecycle
// handling for long-running applications.
//
// A single dispatcher, [Run], drives the application contract in a fixed
// order: Initialize, mark the main thread, install the platform
// notification translator, execute the run body (directly in debug mode,
// under the crash guard otherwise), and perform the shutdown sequence
// exactly once. Platform translators convert asynchronous OS
// notifications (POSIX signals, Windows console control events, service
// control requests, control endpoint commands) into a single buffered
// termination event stream the application consumes at its own pace.
package mainstay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mainstaykit/mainstay/crashguard"
	"github.com/mainstaykit/mainstay/internal/config"
	"github.com/mainstaykit/mainstay/internal/control"
	"github.com/mainstaykit/mainstay/internal/logger"
	"github.com/mainstaykit/mainstay/internal/paths"
	"github.com/mainstaykit/mainstay/mainthread"
)

func dataPaths(root string) paths.DataDir {
	return paths.DataDir{Root: root}
}

// ///////////////////////////////////////////////
// Entry Point Dispatcher
// ///////////////////////////////////////////////

// Run executes the application's entry sequence and returns the process
// exit code.
//
// The sequence: load configuration and set up logging, Initialize, mark
// the main thread, install the platform translator and background
// services, invoke the run body, then shut down. Initialize failing
// returns ExitInitFailure without invoking Run or Shutdown. A fault in
// the run body returns ExitFault with Shutdown deliberately bypassed.
// Otherwise the run body's own code is returned unmodified, and Shutdown
// runs exactly once.
func Run(desc Descriptor, app Application, opts ...Option) int {
	o := buildOptions(opts)
	desc = desc.withResolvedVersion()
	if err := desc.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return ExitInitFailure
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		return ExitInitFailure
	}

	closeLog, err := setupLogging(o, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: init logger: %v\n", err)
		return ExitInitFailure
	}
	defer closeLog()

	rt := newRuntime(desc, cfg, o)
	slog.Info("application starting",
		"app", desc.ShortName,
		"version", desc.Version,
		"daemon", rt.Daemon(),
		"guarded", !o.debugRun,
	)

	if err := app.Initialize(context.Background(), rt); err != nil {
		slog.Error("initialization failed", "error", err)
		return ExitInitFailure
	}
	rt.setState(StateInitialized)

	// The marker must be set before any translator handler or the run
	// body can observe it. A false return means an earlier Run call in
	// this process already claimed the thread; the marker is set-once.
	if !mainthread.Mark() {
		slog.Debug("main thread already marked")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.installRunCancel(cancel)

	tr := newPlatformTranslator()
	if err := tr.Install(rt); err != nil {
		slog.Warn("translator install failed, termination notifications unavailable", "error", err)
	} else {
		defer tr.Uninstall()
	}

	startServices(rt, o)

	var fault *crashguard.Fault
	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			rt.setState(StateShuttingDown)
			start := time.Now()
			rt.stopServices()
			app.Shutdown()
			rt.closeResources()
			rt.ReleaseArgs()
			rt.setState(StateTerminated)
			rt.collector.ShutdownCompleted(time.Since(start))
			slog.Info("shutdown complete", "elapsed", time.Since(start).Round(time.Millisecond).String())
		})
	}
	defer func() {
		if fault != nil {
			// Fault bypass: diagnostics are already on disk, and running
			// teardown over a faulted process can destroy more state than
			// it releases.
			rt.setState(StateTerminated)
			return
		}
		shutdown()
	}()

	var code int
	if o.debugRun {
		rt.setState(StateRunning)
		code = app.Run(runCtx, rt)
	} else {
		rt.setState(StateRunningGuarded)
		cgctx := buildCrashContext(desc, cfg, o.dataDir)
		crashguard.SetDefault(cgctx)
		code, fault = crashguard.Call(cgctx, func() int {
			return app.Run(runCtx, rt)
		})
		crashguard.ClearDefault()
		if fault != nil {
			rt.collector.FaultCaptured(desc.contextName())
			return ExitFault
		}
	}

	rt.collector.RunCompleted(code, !o.debugRun)
	slog.Info("run completed", "code", code)
	return code
}

// ///////////////////////////////////////////////
// Configuration and Logging Setup
// ///////////////////////////////////////////////

// loadConfig resolves the effective configuration: an explicitly supplied
// config wins, then the data directory's config file (seeded from the
// embedded default on first run), then built-in defaults.
func loadConfig(o *options) (*config.Config, error) {
	if o.cfg != nil {
		if err := o.cfg.Validate(); err != nil {
			return nil, err
		}
		return o.cfg, nil
	}
	if o.dataDir == "" {
		return config.DefaultConfig(), nil
	}
	if err := os.MkdirAll(o.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := config.Seed(o.dataDir, DefaultConfigTOML); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write default config: %v\n", err)
	}
	return config.Load(dataPaths(o.dataDir).Config())
}

// setupLogging installs the process default logger: the host's own
// logger when supplied, a rotating file logger under the data directory,
// or a stderr console logger. Returns the cleanup to run at exit.
func setupLogging(o *options, cfg *config.Config) (func(), error) {
	if o.log != nil {
		slog.SetDefault(o.log)
		return func() {}, nil
	}

	level := &slog.LevelVar{}
	level.Set(logger.ParseLevel(cfg.Log.Level))
	o.logLevel = level

	logPath := cfg.Log.File
	switch {
	case logPath == "" && o.dataDir != "":
		logPath = dataPaths(o.dataDir).Log()
	case logPath != "" && !filepath.IsAbs(logPath) && o.dataDir != "":
		logPath = filepath.Join(o.dataDir, logPath)
	}
	if logPath != "" {
		log, closer, err := logger.NewLogger(logPath, level, cfg.Log.MaxSizeMB)
		if err != nil {
			return nil, err
		}
		slog.SetDefault(log)
		return func() { closer.Close() }, nil
	}

	slog.SetDefault(logger.NewConsoleLogger(os.Stderr, level))
	return func() {}, nil
}

// ///////////////////////////////////////////////
// Background Services
// ///////////////////////////////////////////////

// startServices brings up the control endpoint and the config watcher
// under the runtime's supervision group. Both are best effort; the entry
// sequence proceeds without them.
func startServices(rt *Runtime, o *options) {
	cfg := rt.Config()

	if cfg.Control.Enabled {
		endpoint := cfg.Control.Endpoint
		if endpoint == "" && o.dataDir != "" {
			endpoint = control.Endpoint(o.dataDir, rt.desc.ShortName)
		}
		if endpoint == "" {
			slog.Debug("control endpoint disabled, no data directory")
		} else if srv, err := control.NewServer(endpoint, rt); err != nil {
			slog.Warn("control endpoint unavailable", "error", err)
		} else {
			rt.StartService("control", func(ctx context.Context) error {
				<-ctx.Done()
				return srv.Close()
			})
		}
	}

	if rt.configPath != "" && o.cfg == nil {
		if w, err := config.NewWatcher(rt.configPath); err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			rt.StartService("config-watcher", func(ctx context.Context) error {
				defer w.Close()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-w.Events():
						rt.ReloadConfig()
					}
				}
			})
		}
	}
}

// ///////////////////////////////////////////////
// Crash Context
// ///////////////////////////////////////////////

// buildCrashContext derives the crash context for a guarded run: the
// context name identifies the app and version, the store and uploader
// come from configuration, and the dump callback is the descriptor's.
func buildCrashContext(desc Descriptor, cfg *config.Config, dataDir string) *crashguard.Context {
	cgctx := &crashguard.Context{
		Name: desc.contextName(),
		Dump: desc.DumpCallback,
	}

	dir := cfg.Crash.Dir
	switch {
	case dir == "" && dataDir != "":
		dir = dataPaths(dataDir).Crash()
	case dir != "" && !filepath.IsAbs(dir) && dataDir != "":
		dir = filepath.Join(dataDir, dir)
	}
	if dir != "" {
		store, err := crashguard.NewStore(dir, cfg.Crash.Keep)
		if err != nil {
			slog.Warn("crash report store unavailable", "error", err)
		} else {
			cgctx.Store = store
		}
	}

	if cfg.Crash.Upload && cfg.Crash.ReportURL != "" {
		cgctx.Uploader = crashguard.NewUploader(cfg.Crash.ReportURL)
	}
	return cgctx
}
