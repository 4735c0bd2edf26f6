package mainstay

import (
	"errors"
	"runtime/debug"
)

// ///////////////////////////////////////////////
// Application Descriptor
// ///////////////////////////////////////////////

// Descriptor identifies the hosted application. It is owned by the host
// program and read-only to the entry machinery.
type Descriptor struct {
	// ShortName is the application's short identifier, used in crash
	// context names, the control pipe name, and log lines. Required.
	ShortName string

	// Version is the application version string. When empty it is
	// resolved from the build info embedded by the Go toolchain.
	Version string

	// DumpCallback, if set, is invoked after a fault's crash report has
	// been written, with the crash context name as its argument.
	DumpCallback func(contextName string)

	// Daemon marks the process as a background service: it keeps running
	// across interactive user logoff instead of terminating. The config
	// file's [application] daemon flag can also turn this on.
	Daemon bool
}

var errNoShortName = errors.New("descriptor has no short name")

func (d Descriptor) validate() error {
	if d.ShortName == "" {
		return errNoShortName
	}
	return nil
}

// contextName is the identity stamped into crash reports and dump files.
func (d Descriptor) contextName() string {
	return d.ShortName + "-" + d.Version
}

// withResolvedVersion fills in Version from build info when the host left
// it empty.
func (d Descriptor) withResolvedVersion() Descriptor {
	if d.Version == "" {
		d.Version = resolveVersion()
	}
	return d
}

// resolveVersion returns a best-effort version string for the running
// binary. Released module builds carry their module version; bare builds
// fall back to the VCS revision and dirty state the Go toolchain embeds,
// yielding a "dev+<hash>" tag without needing git at runtime.
func resolveVersion() string {
	const fallback = "dev"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return fallback
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}
