//go:build unix

package liveness

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// IsRunning reports whether the process with the given PID exists and the
// caller is allowed to signal it. Every failure of the existence check,
// including ESRCH and EPERM, reports false. Zero and negative PIDs address
// process groups and are never considered running.
//
// A zombie (exited but not yet reaped by its parent) still counts as running.
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}

// Signal sends sig to pid.
func Signal(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return fmt.Errorf("signal %s to pid %d: invalid pid", sig, pid)
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("signal %s to pid %d: %w", sig, pid, err)
	}
	return nil
}
