// POSIX signal translation for unix-like systems.
//
// This file is compiled on all non-Windows platforms (Linux, macOS, *BSD).
// The termination set {SIGTERM, SIGQUIT, SIGINT} is subscribed once and
// forwarded to the event stream by a single drain goroutine. SIGHUP
// triggers a config reload and never posts. SIGPIPE is ignored
// process-wide at install, so writing to a closed pipe surfaces as a
// write error instead of killing the process.

//go:build !windows

package mainstay

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mainstaykit/mainstay/event"
)

// signalTranslator subscribes POSIX signals and forwards them as events.
type signalTranslator struct {
	signals   chan os.Signal
	reloads   chan os.Signal
	done      chan struct{}
	uninstall sync.Once
}

func newPlatformTranslator() Translator {
	return &signalTranslator{}
}

var ignorePipeOnce sync.Once

func (t *signalTranslator) Install(rt *Runtime) error {
	ignorePipeOnce.Do(func() {
		signal.Ignore(syscall.SIGPIPE)
	})

	// Buffer a few deliveries so a burst is not lost while the drain
	// goroutine is between receives.
	t.signals = make(chan os.Signal, 4)
	signal.Notify(t.signals, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)

	t.reloads = make(chan os.Signal, 1)
	signal.Notify(t.reloads, syscall.SIGHUP)

	t.done = make(chan struct{})
	go t.translate(rt)
	return nil
}

// translate posts exactly one event per delivered termination signal. It
// never re-raises and never exits the process.
func (t *signalTranslator) translate(rt *Runtime) {
	for {
		select {
		case sig := <-t.signals:
			s, ok := sig.(syscall.Signal)
			if !ok {
				continue
			}
			rt.Post(kindForSignal(s), event.SourceSignal)
		case <-t.reloads:
			rt.ReloadConfig()
		case <-t.done:
			return
		}
	}
}

func (t *signalTranslator) Uninstall() {
	t.uninstall.Do(func() {
		signal.Stop(t.signals)
		signal.Stop(t.reloads)
		close(t.done)
	})
}
