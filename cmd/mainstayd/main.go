// Package main implements mainstayd, the reference daemon for the mainstay
// entry kit. It runs an event pump under the full entry sequence and offers
// stop/status/logs commands that talk to a running instance through the
// local control endpoint.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mainstaykit/mainstay"
	"github.com/mainstaykit/mainstay/event"
	"github.com/mainstaykit/mainstay/internal/config"
	"github.com/mainstaykit/mainstay/internal/control"
	"github.com/mainstaykit/mainstay/internal/logger"
	"github.com/mainstaykit/mainstay/internal/paths"
)

// appName is the descriptor short name, and with it the control pipe name
// and crash context prefix.
const appName = "mainstayd"

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version can be injected at build time:
//
//	go build -ldflags "-X main.version=1.2.3" ./cmd/mainstayd
//
// Left empty, the kit resolves it from the build info the Go toolchain
// embeds, so bare dev builds still get a usable version string.
var version = ""

// ///////////////////////////////////////////////
// PID Management
// ///////////////////////////////////////////////

// pidToken generates a random 16-character hex token written alongside the
// PID, so [removePID] only deletes a file this instance wrote.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// writePID creates or opens the PID file, acquires the advisory file lock,
// and writes "PID:TOKEN". The handle must stay open for the daemon's
// lifetime to hold the lock; hand it back to [removePID] at exit.
func writePID(dp DataPaths, token string) (*os.File, error) {
	f, err := os.OpenFile(dp.PID(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock PID file: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	content := fmt.Sprintf("%d:%s", os.Getpid(), token)
	if _, err := f.WriteString(content); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return f, nil
}

// removePID releases the lock, closes the handle, and removes the PID file
// only when the stored token matches, so a replacement instance's file is
// never deleted by a stale exiting one.
func removePID(dp DataPaths, token string, f *os.File) {
	if f != nil {
		_ = unlockFile(f)
		f.Close()
	}
	data, err := os.ReadFile(dp.PID())
	if err != nil {
		return
	}
	parts := strings.SplitN(string(data), ":", 2)
	if len(parts) == 2 && parts[1] == token {
		os.Remove(dp.PID())
	}
}

// checkStalePID reports whether another instance is running. Acquiring the
// advisory lock proves any previous instance is dead, in which case the
// stale file is cleaned up; a failed lock means a live instance holds it.
func checkStalePID(dp DataPaths) (alive bool, pid int) {
	f, err := os.OpenFile(dp.PID(), os.O_RDWR, 0o600)
	if err != nil {
		return false, 0
	}

	if lockErr := lockFile(f); lockErr != nil {
		data, _ := os.ReadFile(dp.PID())
		f.Close()
		parts := strings.SplitN(string(data), ":", 2)
		if len(parts) >= 1 {
			if p, convErr := strconv.Atoi(parts[0]); convErr == nil {
				return true, p
			}
		}
		return true, 0
	}

	_ = unlockFile(f)
	f.Close()
	os.Remove(dp.PID())
	return false, 0
}

// ///////////////////////////////////////////////
// Default Data Directory
// ///////////////////////////////////////////////

// defaultDataDir returns the platform default data directory for mainstayd,
// typically ~/.mainstay. Falls back to ./.mainstay when the home directory
// cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func usage() {
	fmt.Fprintf(os.Stderr, `usage: mainstayd [flags] [command]

Commands:
  (none)   run the daemon in the foreground
  stop     ask a running instance to stop
  status   report whether an instance is running
  logs     print the tail of the daemon log

Flags must come before the command:
`)
	flag.PrintDefaults()
}

func main() {
	dataDir := flag.String("data-dir", defaultDataDir(), "Data directory for config, state, and logs")
	tailLines := flag.Int("n", 50, "Number of log lines for the logs command")
	flag.Usage = usage
	flag.Parse()

	dp := DataPaths{Root: *dataDir}

	switch flag.Arg(0) {
	case "":
		os.Exit(runDaemon(dp))
	case "stop":
		os.Exit(runStop(dp))
	case "status":
		os.Exit(runStatus(dp))
	case "logs":
		os.Exit(runLogs(dp, *tailLines))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}
}

// runDaemon runs the daemon in the foreground until a termination event
// arrives, holding the single-instance PID lock for the duration.
func runDaemon(dp DataPaths) int {
	if err := os.MkdirAll(dp.Root, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		return 1
	}

	if alive, pid := checkStalePID(dp); alive {
		fmt.Fprintf(os.Stderr, "daemon already running (pid %d)\n", pid)
		return 1
	}

	token := pidToken()
	pidFile, err := writePID(dp, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: write PID file: %v\n", err)
		return 1
	}

	code := mainstay.Run(
		mainstay.Descriptor{ShortName: appName, Version: version},
		&daemonApp{},
		mainstay.WithDataDir(dp.Root),
	)

	removePID(dp, token, pidFile)
	return exitCode(code)
}

// exitCode maps a [mainstay.Run] result onto the 8-bit range parent
// processes observe. The kit's sentinel codes are negative and os.Exit
// truncates those platform-dependently, so they are mapped explicitly:
// ExitInitFailure (-1) becomes 255 and ExitFault (-2) becomes 254.
func exitCode(code int) int {
	if code < 0 {
		return 256 + code
	}
	return code
}

// ///////////////////////////////////////////////
// Daemon Application
// ///////////////////////////////////////////////

// daemonApp is the application body mainstayd hands to [mainstay.Run]: an
// event pump that idles until a terminal termination event arrives, logging
// every event it consumes.
type daemonApp struct {
	started time.Time
}

func (a *daemonApp) Initialize(ctx context.Context, rt *mainstay.Runtime) error {
	a.started = time.Now()
	slog.Info("daemon initialized", "pid", os.Getpid(), "daemon", rt.Daemon())
	return nil
}

func (a *daemonApp) Run(ctx context.Context, rt *mainstay.Runtime) int {
	return pumpEvents(ctx, rt)
}

func (a *daemonApp) Shutdown() {
	slog.Info("daemon shut down", "uptime", time.Since(a.started).Round(time.Second).String())
}

// eventSource is the slice of [mainstay.Runtime] the pump consumes, split
// out so tests can drive the pump with a bare event stream.
type eventSource interface {
	Events() <-chan event.Event
	Drain() []event.Event
}

// pumpEvents consumes the termination event stream until a terminal event
// arrives. On run-context cancellation any still-buffered events are
// drained and logged before returning.
func pumpEvents(ctx context.Context, src eventSource) int {
	for {
		select {
		case ev := <-src.Events():
			logEvent(ev)
			if ev.Kind.Terminal() {
				return mainstay.ExitSuccess
			}
		case <-ctx.Done():
			for _, ev := range src.Drain() {
				logEvent(ev)
			}
			return mainstay.ExitSuccess
		}
	}
}

func logEvent(ev event.Event) {
	slog.Info("termination event",
		"kind", ev.Kind.String(),
		"source", ev.Source.String(),
		"seq", ev.Seq,
	)
}

// ///////////////////////////////////////////////
// Subcommands
// ///////////////////////////////////////////////

// controlEndpoint resolves the control endpoint a daemon on this data
// directory would be listening on, honoring a configured override.
func controlEndpoint(dp DataPaths) string {
	if cfg, err := config.Load(dp.Config()); err == nil && cfg.Control.Endpoint != "" {
		return cfg.Control.Endpoint
	}
	return control.Endpoint(dp.Root, appName)
}

// runStop asks the running instance to stop via the control endpoint.
func runStop(dp DataPaths) int {
	resp, err := control.Send(controlEndpoint(dp), "stop")
	if err != nil {
		if errors.Is(err, control.ErrNotReachable) {
			fmt.Fprintln(os.Stderr, "no running instance")
		} else {
			fmt.Fprintf(os.Stderr, "stop failed: %v\n", err)
		}
		return 1
	}
	fmt.Println(resp)
	return 0
}

// runStatus reports whether an instance is running on this data directory,
// combining the PID lock probe with a control endpoint liveness check.
func runStatus(dp DataPaths) int {
	alive, pid := checkStalePID(dp)
	if !alive {
		fmt.Println("not running")
		return 1
	}
	if _, err := control.Send(controlEndpoint(dp), "ping"); err != nil {
		fmt.Printf("running (pid %d), control endpoint unreachable\n", pid)
		return 0
	}
	fmt.Printf("running (pid %d)\n", pid)
	return 0
}

// runLogs prints the last n lines of the daemon log.
func runLogs(dp DataPaths, n int) int {
	tail, err := logger.ReadTail(dp.Log(), n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read log: %v\n", err)
		return 1
	}
	if tail != "" {
		fmt.Println(tail)
	}
	return 0
}
