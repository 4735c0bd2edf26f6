// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	PIDFile       = "daemon.pid"
	ConfigFile    = "config.toml"
	LogFile       = "daemon.log"
	CrashDir      = "crash"
	ControlSocket = "control.sock"
)

// DataDirRel is the default data directory for mainstayd, relative to the
// user home directory.
const DataDirRel = ".mainstay"

// CrashReportPattern is the glob matching crash report files inside the
// crash directory. Report file names embed their creation time so
// lexicographic order is chronological.
const CrashReportPattern = "crash-*.json"

// ControlPipeName returns the Windows named pipe path for the control
// endpoint of the application with the given short name.
func ControlPipeName(shortName string) string {
	return `\\.\pipe\` + shortName + `-control`
}

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Crash returns the full path to the crash report directory.
func (d DataDir) Crash() string { return filepath.Join(d.Root, CrashDir) }

// Control returns the full path to the control endpoint socket.
func (d DataDir) Control() string { return filepath.Join(d.Root, ControlSocket) }
