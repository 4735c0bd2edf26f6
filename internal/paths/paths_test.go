package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

// ///////////////////////////////////////////////
// Constant Value Tests
// ///////////////////////////////////////////////

func TestConstantValues(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"PIDFile", PIDFile, "daemon.pid"},
		{"ConfigFile", ConfigFile, "config.toml"},
		{"LogFile", LogFile, "daemon.log"},
		{"CrashDir", CrashDir, "crash"},
		{"ControlSocket", ControlSocket, "control.sock"},
		{"CrashReportPattern", CrashReportPattern, "crash-*.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// DataDir Method Tests
// ///////////////////////////////////////////////

func TestDataDirMethods(t *testing.T) {
	root := filepath.Join("home", "user", ".mainstayd")
	d := DataDir{Root: root}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"PID", d.PID(), filepath.Join(root, "daemon.pid")},
		{"Config", d.Config(), filepath.Join(root, "config.toml")},
		{"Log", d.Log(), filepath.Join(root, "daemon.log")},
		{"Crash", d.Crash(), filepath.Join(root, "crash")},
		{"Control", d.Control(), filepath.Join(root, "control.sock")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDataDirEmptyRoot(t *testing.T) {
	d := DataDir{Root: ""}

	// With an empty root, methods should return just the filename.
	if got := d.PID(); got != PIDFile {
		t.Errorf("PID() with empty root = %q, want %q", got, PIDFile)
	}
	if got := d.Config(); got != ConfigFile {
		t.Errorf("Config() with empty root = %q, want %q", got, ConfigFile)
	}
}

// ///////////////////////////////////////////////
// Control Pipe Name
// ///////////////////////////////////////////////

func TestControlPipeName(t *testing.T) {
	got := ControlPipeName("demo")
	if !strings.HasPrefix(got, `\\.\pipe\`) {
		t.Errorf("ControlPipeName(\"demo\") = %q, want pipe namespace prefix", got)
	}
	if !strings.HasSuffix(got, "demo-control") {
		t.Errorf("ControlPipeName(\"demo\") = %q, want suffix %q", got, "demo-control")
	}
}
