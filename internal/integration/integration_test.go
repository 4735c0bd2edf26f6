// Package integration exercises the full entry sequence against a real
// data directory: config seeding, the rotating log file, control
// endpoint round trips, and crash report capture. Everything runs
// in-process; no helper binaries are built.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mainstaykit/mainstay"
	"github.com/mainstaykit/mainstay/event"
	"github.com/mainstaykit/mainstay/hosted"
	"github.com/mainstaykit/mainstay/internal/control"
	"github.com/mainstaykit/mainstay/internal/paths"
)

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

func testDescriptor() mainstay.Descriptor {
	return mainstay.Descriptor{ShortName: "maintest", Version: "1.0.0"}
}

func readLog(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(paths.DataDir{Root: dir}.Log())
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	return string(data)
}

// ///////////////////////////////////////////////
// Data Directory Bootstrap
// ///////////////////////////////////////////////

func TestRunSeedsDataDirectory(t *testing.T) {
	dir := t.TempDir()

	code := mainstay.Run(testDescriptor(), mainstay.Funcs{}, mainstay.WithDataDir(dir))
	if code != mainstay.ExitSuccess {
		t.Fatalf("Run() = %d, want %d", code, mainstay.ExitSuccess)
	}

	seeded, err := os.ReadFile(paths.DataDir{Root: dir}.Config())
	if err != nil {
		t.Fatalf("config not seeded: %v", err)
	}
	if string(seeded) != string(mainstay.DefaultConfigTOML) {
		t.Error("seeded config differs from the embedded default")
	}

	log := readLog(t, dir)
	for _, want := range []string{"application starting", "run completed", "shutdown complete"} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %q:\n%s", want, log)
		}
	}
}

func TestRunLoadsEditedConfig(t *testing.T) {
	dir := t.TempDir()
	content := "version = 1\n\n[application]\ndaemon = true\n\n[control]\nenabled = false\n"
	if err := os.WriteFile(paths.DataDir{Root: dir}.Config(), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var daemon bool
	app := mainstay.Funcs{
		OnRun: func(ctx context.Context, rt *mainstay.Runtime) int {
			daemon = rt.Daemon()
			return 0
		},
	}
	if code := mainstay.Run(testDescriptor(), app, mainstay.WithDataDir(dir)); code != mainstay.ExitSuccess {
		t.Fatalf("Run() = %d, want %d", code, mainstay.ExitSuccess)
	}
	if !daemon {
		t.Error("rt.Daemon() = false, want true from edited config file")
	}
}

// ///////////////////////////////////////////////
// Control Endpoint
// ///////////////////////////////////////////////

func TestControlStopRoundTrip(t *testing.T) {
	dir := t.TempDir()
	endpoint := control.Endpoint(dir, "maintest")

	app := mainstay.Funcs{
		OnRun: func(ctx context.Context, rt *mainstay.Runtime) int {
			if resp, err := control.Send(endpoint, "ping"); err != nil || resp != "pong" {
				t.Errorf("ping = %q, %v, want pong", resp, err)
			}
			if resp, err := control.Send(endpoint, "stop"); err != nil || resp != "ok" {
				t.Errorf("stop = %q, %v, want ok", resp, err)
			}

			// The server posts before answering "ok", so the event is
			// already buffered and the run context already canceled.
			select {
			case ev := <-rt.Events():
				if ev.Kind != event.KindTerminate {
					t.Errorf("Kind = %v, want %v", ev.Kind, event.KindTerminate)
				}
				if ev.Source != event.SourceControl {
					t.Errorf("Source = %v, want %v", ev.Source, event.SourceControl)
				}
			case <-time.After(5 * time.Second):
				t.Error("no event arrived for control stop")
			}
			select {
			case <-ctx.Done():
			default:
				t.Error("run context not canceled after control stop")
			}
			return 0
		},
	}

	if code := mainstay.Run(testDescriptor(), app, mainstay.WithDataDir(dir)); code != mainstay.ExitSuccess {
		t.Fatalf("Run() = %d, want %d", code, mainstay.ExitSuccess)
	}
}

// ///////////////////////////////////////////////
// Hosted Lifecycle
// ///////////////////////////////////////////////

func TestHostedTeardownOverRuntime(t *testing.T) {
	dir := t.TempDir()

	var order []string
	app := mainstay.Funcs{
		OnRun: func(ctx context.Context, rt *mainstay.Runtime) int {
			lc := hosted.New(rt, hosted.Hooks{
				PostLoop: func(pending []event.Event) {
					if len(pending) != 1 || pending[0].Kind != event.KindShutdown || pending[0].Source != event.SourceHost {
						t.Errorf("pending = %v, want the single host shutdown event", pending)
					}
					order = append(order, "postloop")
				},
				StopServices: func() { order = append(order, "stop") },
				Exit:         func() { order = append(order, "exit") },
				ReleaseArgs:  rt.ReleaseArgs,
				Finalize:     func() { order = append(order, "finalize") },
			})
			lc.OnClose(func() error {
				order = append(order, "close")
				return nil
			})

			lc.WillTerminate()
			lc.WillTerminate()

			if len(rt.Args()) != 0 {
				t.Error("retained args survived the teardown")
			}
			select {
			case <-ctx.Done():
			default:
				t.Error("run context not canceled by the host shutdown event")
			}
			return 0
		},
	}
	if code := mainstay.Run(testDescriptor(), app, mainstay.WithDataDir(dir)); code != mainstay.ExitSuccess {
		t.Fatalf("Run() = %d, want %d", code, mainstay.ExitSuccess)
	}

	want := []string{"postloop", "stop", "close", "exit", "finalize"}
	if len(order) != len(want) {
		t.Fatalf("teardown ran %d stages %v, want %d", len(order), order, len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, order[i], want[i])
		}
	}
}

// ///////////////////////////////////////////////
// Crash Capture
// ///////////////////////////////////////////////

func TestGuardedFaultWritesReport(t *testing.T) {
	dir := t.TempDir()

	app := mainstay.Funcs{
		OnRun: func(ctx context.Context, rt *mainstay.Runtime) int {
			panic("integration boom")
		},
	}
	code := mainstay.Run(testDescriptor(), app,
		mainstay.WithDataDir(dir), mainstay.WithDebugRun(false))
	if code != mainstay.ExitFault {
		t.Fatalf("Run() = %d, want %d", code, mainstay.ExitFault)
	}

	pattern := filepath.Join(paths.DataDir{Root: dir}.Crash(), paths.CrashReportPattern)
	reports, err := filepath.Glob(pattern)
	if err != nil || len(reports) != 1 {
		t.Fatalf("crash reports = %v (err %v), want exactly one", reports, err)
	}

	data, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{"maintest-1.0.0", "integration boom"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report missing %q", want)
		}
	}
}
