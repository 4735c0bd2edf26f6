package crashguard

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/process"
)

// ///////////////////////////////////////////////
// Crash Reports
// ///////////////////////////////////////////////

// Report is the JSON document persisted for one captured fault.
type Report struct {
	// ID uniquely identifies this report.
	ID string `json:"id"`
	// Name is the crash context name the fault was captured under.
	Name string `json:"name"`
	// Time is when the fault was captured.
	Time time.Time `json:"time"`
	// Panic is the rendered panic value.
	Panic string `json:"panic"`
	// Stack is the all-goroutine stack dump.
	Stack string `json:"stack"`

	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	PID       int    `json:"pid"`

	// Resources is a best-effort usage snapshot taken at capture time.
	// Nil when the snapshot failed.
	Resources *ResourceUsage `json:"resources,omitempty"`
}

// ResourceUsage is a point-in-time usage snapshot of this process.
type ResourceUsage struct {
	// UserCPUMillis is cumulative user-mode CPU time in milliseconds.
	UserCPUMillis float64 `json:"user_cpu_millis"`
	// SystemCPUMillis is cumulative system-mode CPU time in milliseconds.
	SystemCPUMillis float64 `json:"system_cpu_millis"`
	// ResidentMemory is resident set size in bytes.
	ResidentMemory int64 `json:"resident_memory"`
}

// NewReport builds a report for a captured fault, stamped with the build
// and process identity and a usage snapshot.
func NewReport(name string, f *Fault) *Report {
	return &Report{
		ID:        uuid.New().String(),
		Name:      name,
		Time:      f.Time,
		Panic:     f.Message(),
		Stack:     string(f.Stack),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		PID:       os.Getpid(),
		Resources: snapshotResources(os.Getpid()),
	}
}

// snapshotResources reads CPU and memory usage for pid. Returns nil if any
// probe fails; a crash report without usage data is still a crash report.
func snapshotResources(pid int) *ResourceUsage {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}
	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		return nil
	}
	cpuTimes, err := proc.Times()
	if err != nil {
		return nil
	}
	return &ResourceUsage{
		UserCPUMillis:   cpuTimes.User * 1000.0,
		SystemCPUMillis: cpuTimes.System * 1000.0,
		ResidentMemory:  int64(memoryInfo.RSS),
	}
}
