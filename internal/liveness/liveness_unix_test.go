//go:build unix

package liveness

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

// exitedPID starts a short-lived child, reaps it, and returns its PID. The PID
// may in theory be recycled by the kernel, but not within a test run.
func exitedPID(t *testing.T) int {
	t.Helper()
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run true: %v", err)
	}
	return cmd.Process.Pid
}

func TestIsRunning(t *testing.T) {
	t.Parallel()

	dead := exitedPID(t)

	tests := map[string]struct {
		pid  int
		want bool
	}{
		"own process":    {pid: os.Getpid(), want: true},
		"parent process": {pid: os.Getppid(), want: true},
		"reaped child":   {pid: dead, want: false},
		"zero pid":       {pid: 0, want: false},
		"negative pid":   {pid: -1, want: false},
		"out of range":   {pid: 1 << 30, want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := IsRunning(tc.pid); got != tc.want {
				t.Errorf("IsRunning(%d) = %v, want %v", tc.pid, got, tc.want)
			}
		})
	}
}

func TestIsRunning_ChildLifecycle(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	pid := cmd.Process.Pid
	waited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(waited)
	}()

	if !IsRunning(pid) {
		t.Fatalf("IsRunning(%d) = false for a started child", pid)
	}

	if err := Signal(pid, syscall.SIGKILL); err != nil {
		t.Fatalf("Signal(SIGKILL): %v", err)
	}

	select {
	case <-waited:
	case <-time.After(10 * time.Second):
		t.Fatal("child was not reaped after SIGKILL")
	}

	if IsRunning(pid) {
		t.Errorf("IsRunning(%d) = true after the child was killed and reaped", pid)
	}
}

func TestSignal_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid pid", func(t *testing.T) {
		t.Parallel()
		if err := Signal(0, syscall.SIGTERM); err == nil {
			t.Fatal("expected error for pid 0")
		}
	})

	t.Run("no such process", func(t *testing.T) {
		t.Parallel()
		err := Signal(exitedPID(t), syscall.SIGTERM)
		if !errors.Is(err, syscall.ESRCH) {
			t.Fatalf("Signal() error = %v, want ESRCH", err)
		}
	})
}
