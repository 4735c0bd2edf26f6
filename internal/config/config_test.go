// Tests for configuration defaults, loading, validation, seeding, and the
// version gate with its migration path.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mainstaykit/mainstay/internal/migrate"
)

// ///////////////////////////////////////////////
// Defaults
// ///////////////////////////////////////////////

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestExampleConfigIsValid(t *testing.T) {
	if err := ExampleConfig().Validate(); err != nil {
		t.Fatalf("ExampleConfig().Validate() = %v, want nil", err)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Version != migrate.Config.CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, migrate.Config.CurrentVersion)
	}
	if cfg.Application.Daemon {
		t.Error("Application.Daemon = true, want false")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Events.Buffer != 8 {
		t.Errorf("Events.Buffer = %d, want 8", cfg.Events.Buffer)
	}
	if cfg.Crash.Keep != 20 {
		t.Errorf("Crash.Keep = %d, want 20", cfg.Crash.Keep)
	}
	if !cfg.Control.Enabled {
		t.Error("Control.Enabled = false, want true")
	}
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

func TestPeekVersion(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"explicit", "version = 3\n", 3},
		{"missing", "[log]\nlevel = \"info\"\n", 1},
		{"zero", "version = 0\n", 1},
		{"malformed", "not toml at all {{", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeekVersion([]byte(tt.data)); got != tt.want {
				t.Errorf("PeekVersion(%q) = %d, want %d", tt.data, got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default %q", cfg.Log.Level, "info")
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `version = 1

[application]
daemon = true

[log]
level = "debug"
file = "/var/log/test.log"
max_size_mb = 5

[events]
buffer = 16

[crash]
keep = 3
upload = true
report_url = "https://crash.example.com/ingest"

[control]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Application.Daemon {
		t.Error("Application.Daemon = false, want true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.File != "/var/log/test.log" {
		t.Errorf("Log.File = %q, want %q", cfg.Log.File, "/var/log/test.log")
	}
	if cfg.Log.MaxSizeMB != 5 {
		t.Errorf("Log.MaxSizeMB = %d, want 5", cfg.Log.MaxSizeMB)
	}
	if cfg.Events.Buffer != 16 {
		t.Errorf("Events.Buffer = %d, want 16", cfg.Events.Buffer)
	}
	if cfg.Crash.Keep != 3 {
		t.Errorf("Crash.Keep = %d, want 3", cfg.Crash.Keep)
	}
	if cfg.Crash.ReportURL != "https://crash.example.com/ingest" {
		t.Errorf("Crash.ReportURL = %q, want ingest URL", cfg.Crash.ReportURL)
	}
	if cfg.Control.Enabled {
		t.Error("Control.Enabled = true, want false")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Log.MaxSizeMB != 10 {
		t.Errorf("Log.MaxSizeMB = %d, want default 10", cfg.Log.MaxSizeMB)
	}
	if cfg.Events.Buffer != 8 {
		t.Errorf("Events.Buffer = %d, want default 8", cfg.Events.Buffer)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = 99\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a config from the future, want error")
	}
}

// overrideRegistry swaps in a v2 migration for the duration of a test and
// restores the real registry afterwards.
func overrideRegistry(t *testing.T, m migrate.Migration) {
	t.Helper()
	orig := *migrate.Config
	t.Cleanup(func() { *migrate.Config = orig })
	migrate.Config.CurrentVersion = m.Version
	migrate.Config.Migrations = []migrate.Migration{m}
}

func TestLoadAppliesMigrations(t *testing.T) {
	// Pretend v2 renamed the "shout" log level to "warn".
	overrideRegistry(t, migrate.Migration{
		Version:     2,
		Description: "rename shout level",
		Upgrade: func(data []byte) ([]byte, error) {
			return bytes.ReplaceAll(data, []byte(`"shout"`), []byte(`"warn"`)), nil
		},
	})

	path := filepath.Join(t.TempDir(), "config.toml")
	content := "version = 1\n\n[log]\nlevel = \"shout\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want migrated %q", cfg.Log.Level, "warn")
	}
	if cfg.Version != 2 {
		t.Errorf("Version = %d, want 2", cfg.Version)
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("no backup written: %v", err)
	}
	if string(bak) != content {
		t.Errorf("backup = %q, want original content", bak)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := PeekVersion(data); got != 2 {
		t.Errorf("re-saved file version = %d, want 2", got)
	}
}

func TestLoadMigrationFailureSurfaces(t *testing.T) {
	overrideRegistry(t, migrate.Migration{
		Version:     2,
		Description: "broken",
		Upgrade: func(data []byte) ([]byte, error) {
			return nil, os.ErrInvalid
		},
	})

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load succeeded with a failing migration, want error")
	}
	if !strings.Contains(err.Error(), "migrate config") {
		t.Errorf("error = %v, want migrate config wrap", err)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = 1\n[log\nlevel"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed TOML, want error")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"shout\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load accepted invalid log level, want error")
	}
	if !strings.Contains(err.Error(), "log.level") {
		t.Errorf("error = %v, want mention of log.level", err)
	}
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"uppercase level ok", func(c *Config) { c.Log.Level = "DEBUG" }, false},
		{"zero max size", func(c *Config) { c.Log.MaxSizeMB = 0 }, true},
		{"negative buffer", func(c *Config) { c.Events.Buffer = -1 }, true},
		{"zero buffer ok", func(c *Config) { c.Events.Buffer = 0 }, false},
		{"negative keep", func(c *Config) { c.Crash.Keep = -1 }, true},
		{"upload without url", func(c *Config) { c.Crash.Upload = true }, true},
		{"upload with https url", func(c *Config) {
			c.Crash.Upload = true
			c.Crash.ReportURL = "https://crash.example.com/ingest"
		}, false},
		{"upload with bad scheme", func(c *Config) {
			c.Crash.Upload = true
			c.Crash.ReportURL = "ftp://crash.example.com"
		}, true},
		{"url without upload ok", func(c *Config) { c.Crash.ReportURL = "not a url at all" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Save and Seed
// ///////////////////////////////////////////////

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Application.Daemon = true
	cfg.Log.Level = "debug"
	cfg.Events.Buffer = 32
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Application.Daemon {
		t.Error("Application.Daemon lost in round trip")
	}
	if got.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", got.Log.Level, "debug")
	}
	if got.Events.Buffer != 32 {
		t.Errorf("Events.Buffer = %d, want 32", got.Events.Buffer)
	}
}

func TestSeedWritesWhenMissing(t *testing.T) {
	dir := t.TempDir()
	seed := []byte("version = 1\n\n[log]\nlevel = \"info\"\nmax_size_mb = 10\n")

	if err := Seed(dir, seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != string(seed) {
		t.Errorf("seeded content = %q, want %q", data, seed)
	}
}

func TestSeedLeavesExistingUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	existing := []byte("[log]\nlevel = \"warn\"\n")
	if err := os.WriteFile(path, existing, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := Seed(dir, []byte("version = 1\n")); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != string(existing) {
		t.Errorf("Seed overwrote existing config: %q", data)
	}
}
