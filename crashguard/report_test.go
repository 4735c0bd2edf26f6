package crashguard

import (
	"os"
	"runtime"
	"testing"
	"time"
)

func TestNewReport_StampsIdentity(t *testing.T) {
	f := &Fault{
		Value: "boom",
		Stack: []byte("goroutine 1 [running]:"),
		Time:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	r := NewReport("demo-1.0.0", f)

	if len(r.ID) != 36 {
		t.Errorf("ID = %q, want a UUID", r.ID)
	}
	if r.Name != "demo-1.0.0" {
		t.Errorf("Name = %q, want %q", r.Name, "demo-1.0.0")
	}
	if !r.Time.Equal(f.Time) {
		t.Errorf("Time = %v, want %v", r.Time, f.Time)
	}
	if r.Panic != "boom" {
		t.Errorf("Panic = %q, want %q", r.Panic, "boom")
	}
	if r.Stack != "goroutine 1 [running]:" {
		t.Errorf("Stack = %q, want the fault stack", r.Stack)
	}
	if r.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", r.GoVersion, runtime.Version())
	}
	if r.OS != runtime.GOOS || r.Arch != runtime.GOARCH {
		t.Errorf("OS/Arch = %s/%s, want %s/%s", r.OS, r.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if r.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", r.PID, os.Getpid())
	}
}

func TestSnapshotResources_Self(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "windows", "darwin":
	default:
		t.Skipf("no resource snapshot support on %s", runtime.GOOS)
	}

	usage := snapshotResources(os.Getpid())
	if usage == nil {
		t.Fatal("snapshot of own process failed")
	}
	if usage.ResidentMemory <= 0 {
		t.Errorf("ResidentMemory = %d, want > 0", usage.ResidentMemory)
	}
	if usage.UserCPUMillis < 0 || usage.SystemCPUMillis < 0 {
		t.Errorf("negative CPU times: user=%f system=%f", usage.UserCPUMillis, usage.SystemCPUMillis)
	}
}
