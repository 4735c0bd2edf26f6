package crashguard

import "sync/atomic"

// ///////////////////////////////////////////////
// Crash Context
// ///////////////////////////////////////////////

// Context carries everything a fault capture needs: the identity stamped
// into reports, where to persist them, whether to upload them, and the
// application's dump callback.
type Context struct {
	// Name identifies the process in reports and dump files, conventionally
	// "<short name>-<version>".
	Name string
	// Store persists crash reports locally. Nil disables persistence.
	Store *Store
	// Uploader posts crash reports to a collection endpoint. Nil disables
	// uploads.
	Uploader *Uploader
	// Dump is the application callback invoked after a report is written,
	// with Name as its argument. Nil means no callback.
	Dump func(name string)
}

var defaultContext atomic.Pointer[Context]

// SetDefault installs ctx as the process-wide crash context used by
// [Call] when its ctx argument is nil.
func SetDefault(ctx *Context) {
	defaultContext.Store(ctx)
}

// Default returns the process-wide crash context, or nil if none is
// installed.
func Default() *Context {
	return defaultContext.Load()
}

// ClearDefault removes the process-wide crash context.
func ClearDefault() {
	defaultContext.Store(nil)
}
