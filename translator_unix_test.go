// POSIX signal translator tests. The delivery test signals the test
// process itself, which is safe because the translator owns the
// disposition of SIGTERM while it is installed.

//go:build !windows

package mainstay

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/mainstaykit/mainstay/event"
)

func TestSignalTranslator_DeliversTermination(t *testing.T) {
	app := &recordingApp{}
	app.runFn = func(ctx context.Context, rt *Runtime) int {
		if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
			t.Errorf("kill: %v", err)
			return 1
		}
		select {
		case ev := <-rt.Events():
			if ev.Kind != event.KindTerminate {
				t.Errorf("Kind = %v, want %v", ev.Kind, event.KindTerminate)
			}
			if ev.Source != event.SourceSignal {
				t.Errorf("Source = %v, want %v", ev.Source, event.SourceSignal)
			}
		case <-time.After(5 * time.Second):
			t.Error("no event arrived for SIGTERM")
		}
		return 0
	}

	if code := Run(Descriptor{ShortName: "testapp"}, app, testRunOpts(testConfig())...); code != ExitSuccess {
		t.Errorf("Run() = %d, want %d", code, ExitSuccess)
	}
}

func TestSignalTranslator_InterruptCancelsRunContext(t *testing.T) {
	app := &recordingApp{}
	app.runFn = func(ctx context.Context, rt *Runtime) int {
		if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
			t.Errorf("kill: %v", err)
			return 1
		}
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Error("run context not canceled after SIGINT")
		}
		return 0
	}

	if code := Run(Descriptor{ShortName: "testapp"}, app, testRunOpts(testConfig())...); code != ExitSuccess {
		t.Errorf("Run() = %d, want %d", code, ExitSuccess)
	}
}

func TestSignalTranslator_UninstallIdempotent(t *testing.T) {
	rt := newTestRuntime(testConfig())
	defer rt.stopServices()

	tr := newPlatformTranslator()
	if err := tr.Install(rt); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	tr.Uninstall()
	tr.Uninstall() // second call must be a no-op
}

func TestSignalTranslator_PipeIgnoredAtInstall(t *testing.T) {
	rt := newTestRuntime(testConfig())
	defer rt.stopServices()

	tr := newPlatformTranslator()
	if err := tr.Install(rt); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	defer tr.Uninstall()

	if !signal.Ignored(syscall.SIGPIPE) {
		t.Error("SIGPIPE still has default disposition after install")
	}
}
