// Windows notification translation.
//
// Interactive processes get a console control handler; processes started
// by the Service Control Manager additionally get a service control
// handler. Both post into the same event stream.

//go:build windows

package mainstay

import (
	"log/slog"
	"sync"

	"golang.org/x/sys/windows/svc"
)

// consoleTranslator wires console control events, and service control
// requests when applicable, into the runtime's stream.
type consoleTranslator struct {
	service   *serviceHandler
	uninstall sync.Once
}

func newPlatformTranslator() Translator {
	return &consoleTranslator{}
}

func (t *consoleTranslator) Install(rt *Runtime) error {
	if err := installConsoleHandler(rt); err != nil {
		return err
	}

	isService, err := svc.IsWindowsService()
	if err != nil {
		slog.Warn("failed to detect service status, assuming interactive", "error", err)
		isService = false
	}
	if isService {
		t.service = &serviceHandler{rt: rt, stopped: make(chan struct{})}
		runService(t.service)
	}
	return nil
}

func (t *consoleTranslator) Uninstall() {
	t.uninstall.Do(func() {
		if t.service != nil {
			close(t.service.stopped)
		}
		uninstallConsoleHandler()
	})
}
