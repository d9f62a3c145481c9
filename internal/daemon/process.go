package daemon

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// DefaultProcessName is the node daemon's executable name.
const DefaultProcessName = "myst"

// ProcessFinder returns the PID of a running process called name, or 0.
type ProcessFinder func(name string) int32

// FindProcess scans the process table for name.
func FindProcess(name string) int32 {
	procs, err := process.Processes()
	if err != nil {
		return 0
	}
	for _, proc := range procs {
		if isNamedProcess(proc, name) {
			return proc.Pid
		}
	}
	return 0
}

// isNamedProcess Check if process is the daemon
func isNamedProcess(proc *process.Process, name string) bool {
	// Method 1: Check process name
	if n, _ := proc.Name(); n == name || n == name+".exe" {
		return true
	}

	// Method 2: Check executable path (process name may be truncated on macOS)
	exe, _ := proc.Exe()
	return strings.HasSuffix(exe, "/"+name) || strings.HasSuffix(exe, "\\"+name+".exe")
}

// isProcessAlive reports whether pid still names a running process.
func isProcessAlive(pid int32) bool {
	if pid <= 0 {
		return false
	}
	alive, err := process.PidExists(pid)
	return err == nil && alive
}
