package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "crash.report_url")
// to their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── Application ──────────────────────────────────────────────
	"application.daemon": {
		Comment: "Run as a background service. A daemon keeps running when the\ninteractive user logs off; a non-daemon terminates with the session.",
		Alternatives: []string{
			`daemon = true`,
		},
	},

	// ── Log ──────────────────────────────────────────────────────
	"log": {
		Comment: "Logging configuration",
	},
	"log.level": {
		Comment: "Minimum log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"\nApplied live on config reload (SIGHUP or file change).",
		Alternatives: []string{
			`level = "debug"`,
			`level = "warn"`,
		},
	},
	"log.file": {
		Comment: "Log file path. Empty = <data-dir>/daemon.log; relative paths are\nresolved against the data directory.",
		Alternatives: []string{
			`file = "/var/log/myapp.log"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},

	// ── Events ───────────────────────────────────────────────────
	"events.buffer": {
		Comment: "Capacity of the termination event stream. Events posted before the\napplication pump attaches are buffered up to this count; further\nevents are dropped and counted. 0 = built-in default.",
	},

	// ── Crash ────────────────────────────────────────────────────
	"crash.dir": {
		Comment: "Where crash reports are written. Empty = <data-dir>/crash.",
		Alternatives: []string{
			`dir = "/var/crash/myapp"`,
		},
	},
	"crash.keep": {
		Comment: "How many crash reports to retain. Older reports are pruned after\neach new one. 0 = keep everything.",
	},
	"crash.upload": {
		Comment: "Post each new crash report to report_url. Failures are logged and\nnever block termination.",
	},
	"crash.report_url": {
		Comment: "HTTP endpoint that receives crash reports as JSON (required when\nupload = true).",
		Alternatives: []string{
			`report_url = "https://crash.example.com/ingest"`,
		},
	},

	// ── Control ──────────────────────────────────────────────────
	"control.enabled": {
		Comment: "Local control endpoint for \"stop\" and \"status\" commands.\nUnix domain socket on POSIX systems, named pipe on Windows.",
	},
	"control.endpoint": {
		Comment: "Override the endpoint address. Empty = platform default inside the\ndata directory.",
		Alternatives: []string{
			`endpoint = "/run/myapp/control.sock"`,
		},
	},
}
