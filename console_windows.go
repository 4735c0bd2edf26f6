// Windows console control handler registration.
//
// The console host invokes the registered HandlerRoutine on a thread it
// injects into the process, concurrent with everything else. The handler
// therefore only touches handler-safe state: the lock-free event stream
// and atomics. SetConsoleCtrlHandler and SetProcessShutdownParameters are
// loaded from kernel32 directly.

//go:build windows

package mainstay

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/windows"

	"github.com/mainstaykit/mainstay/event"
)

var (
	kernel32                         = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCtrlHandler        = kernel32.NewProc("SetConsoleCtrlHandler")
	procSetProcessShutdownParameters = kernel32.NewProc("SetProcessShutdownParameters")
)

// Shutdown parameter values from winbase.h: the default shutdown level,
// and the flag that suppresses the "program not responding" retry dialog.
const (
	shutdownLevelDefault = 0x280
	shutdownNoRetry      = 0x1
)

// consoleRuntime is the runtime the registered handler posts to. Win32
// callbacks can never be released, so one callback is created per process
// and the active runtime is swapped through this pointer instead.
var consoleRuntime atomic.Pointer[Runtime]

var (
	consoleCallback     uintptr
	consoleCallbackOnce sync.Once
)

func consoleHandlerAddr() uintptr {
	consoleCallbackOnce.Do(func() {
		consoleCallback = windows.NewCallback(handleConsoleEvent)
	})
	return consoleCallback
}

// handleConsoleEvent is the HandlerRoutine. Returns 1 to claim the event
// as handled, 0 to pass it along the handler chain.
func handleConsoleEvent(code uint32) uintptr {
	rt := consoleRuntime.Load()
	if rt == nil {
		return 0
	}

	d := translateConsoleEvent(code, rt.Daemon())
	if d.post {
		rt.Post(d.kind, event.SourceConsole)
		// The host may kill the process the moment this handler returns.
		// Refuse the shutdown retry dialog, then hold the injected thread
		// briefly to stretch the remaining lifetime so the consumer can
		// observe the event. This wait synchronizes nothing.
		procSetProcessShutdownParameters.Call(uintptr(shutdownLevelDefault), uintptr(shutdownNoRetry))
		time.Sleep(time.Second)
	}

	if d.handled {
		return 1
	}
	return 0
}

func installConsoleHandler(rt *Runtime) error {
	consoleRuntime.Store(rt)
	r1, _, err := procSetConsoleCtrlHandler.Call(consoleHandlerAddr(), 1)
	if r1 == 0 {
		consoleRuntime.Store(nil)
		return fmt.Errorf("SetConsoleCtrlHandler: %w", err)
	}
	return nil
}

func uninstallConsoleHandler() {
	procSetConsoleCtrlHandler.Call(consoleHandlerAddr(), 0)
	consoleRuntime.Store(nil)
}
