package terminate

import (
	"syscall"
)

// NewWithProbesForTesting returns a Terminator that uses the given liveness
// probe and signal sender instead of real processes.
func NewWithProbesForTesting(cfg Config, isRunning func(int) bool, signal func(int, syscall.Signal) error) *Terminator {
	t := New(cfg)
	t.isRunning = isRunning
	t.signal = signal
	return t
}
