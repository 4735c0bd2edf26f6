package mainstay

import (
	"errors"
	"testing"
)

// ///////////////////////////////////////////////
// Descriptor Tests
// ///////////////////////////////////////////////

func TestDescriptorValidate(t *testing.T) {
	if err := (Descriptor{ShortName: "myapp"}).validate(); err != nil {
		t.Errorf("validate() error for named descriptor: %v", err)
	}

	err := (Descriptor{}).validate()
	if !errors.Is(err, errNoShortName) {
		t.Errorf("validate() error = %v, want errNoShortName", err)
	}
}

func TestDescriptorContextName(t *testing.T) {
	d := Descriptor{ShortName: "myapp", Version: "1.2.3"}
	if got := d.contextName(); got != "myapp-1.2.3" {
		t.Errorf("contextName() = %q, want %q", got, "myapp-1.2.3")
	}
}

func TestWithResolvedVersionKeepsExplicit(t *testing.T) {
	d := Descriptor{ShortName: "myapp", Version: "9.9.9"}
	if got := d.withResolvedVersion().Version; got != "9.9.9" {
		t.Errorf("withResolvedVersion() replaced an explicit version with %q", got)
	}
}

func TestWithResolvedVersionFillsEmpty(t *testing.T) {
	d := Descriptor{ShortName: "myapp"}
	got := d.withResolvedVersion().Version
	if got == "" {
		t.Error("withResolvedVersion() left Version empty")
	}
}

func TestResolveVersionNonEmpty(t *testing.T) {
	// Test binaries may or may not carry module or VCS build info; the
	// resolver must produce something usable either way.
	if got := resolveVersion(); got == "" {
		t.Error("resolveVersion() returned empty string")
	}
}
