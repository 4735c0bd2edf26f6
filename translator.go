package mainstay

// ///////////////////////////////////////////////
// Notification Translator
// ///////////////////////////////////////////////

// Translator converts platform termination notifications into events on
// the runtime's stream. One abstract translation seam, with a build-tag
// variant per platform behind [newPlatformTranslator]: POSIX signals on
// unix-like systems, console control events and service control requests
// on Windows.
type Translator interface {
	// Install begins translating notifications into events on rt.
	Install(rt *Runtime) error

	// Uninstall stops translating. Idempotent; notifications arriving
	// afterwards get platform default handling.
	Uninstall()
}
