//go:build !unix

package liveness

import (
	"errors"
	"os"
	"syscall"
)

// IsRunning reports whether the process with the given PID exists. On
// platforms without kill(2) it falls back to os.FindProcess, which opens a
// handle to the process and fails when it does not exist.
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

// Signal delivers sig to pid. Only SIGKILL is supported outside unix.
func Signal(pid int, sig syscall.Signal) error {
	if sig != syscall.SIGKILL {
		return errors.New("only SIGKILL is supported on this platform")
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
