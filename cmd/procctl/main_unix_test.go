//go:build unix

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/procctl"
)

func TestExecute_Run(t *testing.T) {
	tests := map[string]struct {
		args []string
		want int
	}{
		"success":     {args: []string{"run", "--", "sh", "-c", "echo hello"}, want: 0},
		"exit status": {args: []string{"run", "--", "sh", "-c", "exit 3"}, want: 3},
		"signalled":   {args: []string{"run", "--", "sh", "-c", "kill -TERM $$"}, want: 143},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if code, _, stderr := runCLI(t, tc.args...); code != tc.want {
				t.Errorf("procctl %v = %d, want %d (stderr %q)", tc.args, code, tc.want, stderr)
			}
		})
	}
}

func TestExecute_RunLogsOutput(t *testing.T) {
	_, _, stderr := runCLI(t, "--log-format", "json", "run", "--", "sh", "-c", "echo hello")
	if !strings.Contains(stderr, `"msg":"hello"`) {
		t.Errorf("log output %q lacks the command output", stderr)
	}
}

func TestExecute_RunAlone(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "ran")

	code, _, stderr := runCLI(t, "run-alone", "--lock-dir", dir, "--", "sh", "-c", "touch "+marker)
	if code != exitOK {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", code, stderr)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("command did not run: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read lock dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("lock dir has %d entries after the run, want 0", len(entries))
	}
}

func TestExecute_RunAloneMissingLockDir(t *testing.T) {
	code, _, stderr := runCLI(t, "run-alone", "--lock-dir", filepath.Join(t.TempDir(), "missing"), "--", "true")
	if code != exitFailure {
		t.Errorf("exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(stderr, procctl.ErrLockLocationUnavailable.Error()) {
		t.Errorf("stderr = %q, want %q", stderr, procctl.ErrLockLocationUnavailable)
	}
}

func TestExecute_RunAloneContended(t *testing.T) {
	dir := t.TempDir()
	argv := []string{"sleep", "30"}

	// flock(1) holds the command's lock file from another process while the
	// CLI competes for it.
	fp, err := procctl.CommandFingerprint(argv)
	if err != nil {
		t.Fatalf("CommandFingerprint() error: %v", err)
	}
	if _, err := exec.LookPath("flock"); err != nil {
		t.Skip("flock(1) unavailable")
	}
	lockPath := filepath.Join(dir, fp.Hash())
	holder := exec.Command("flock", "-o", "-x", lockPath, "sleep", "10")
	if err := holder.Start(); err != nil {
		t.Fatalf("start holder: %v", err)
	}
	t.Cleanup(func() {
		_ = holder.Process.Kill()
		_ = holder.Wait()
	})
	waitForFile(t, lockPath)
	time.Sleep(100 * time.Millisecond)

	args := append([]string{"run-alone", "--lock-dir", dir, "--acquire-timeout", "200ms", "--"}, argv...)
	if code, _, stderr := runCLI(t, args...); code != exitBusy {
		t.Errorf("exit code = %d, want %d (stderr %q)", code, exitBusy, stderr)
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	err := wait.PollUntilContextTimeout(context.Background(), 10*time.Millisecond, 5*time.Second, true,
		func(context.Context) (bool, error) {
			_, err := os.Stat(path)
			return err == nil, nil
		})
	if err != nil {
		t.Fatalf("%s never appeared: %v", path, err)
	}
}

func TestExecute_TerminateZeroKillTimeout(t *testing.T) {
	// A reaped child's PID names no process.
	gone := exec.Command("true")
	if err := gone.Run(); err != nil {
		t.Fatalf("run true: %v", err)
	}
	pid := strconv.Itoa(gone.Process.Pid)

	code, stdout, stderr := runCLI(t, "terminate", "--kill-timeout", "0", pid)
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d (stderr %q)", code, exitOK, stderr)
	}
	if got := strings.TrimSpace(stdout); got != procctl.OutcomeNotRunning.String() {
		t.Errorf("outcome = %q, want %q", got, procctl.OutcomeNotRunning)
	}
}

func readPID(t *testing.T, path string) int {
	t.Helper()

	var pid int
	err := wait.PollUntilContextTimeout(context.Background(), 10*time.Millisecond, 10*time.Second, true,
		func(context.Context) (bool, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return false, nil
			}
			pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
			return err == nil, nil
		})
	if err != nil {
		t.Fatalf("command never wrote its pid: %v", err)
	}
	return pid
}

func TestRunAlone_SignalKillsCommandBeforeReleasingLock(t *testing.T) {
	tests := map[string]struct {
		sig      syscall.Signal
		wantCode int
	}{
		"SIGTERM": {sig: syscall.SIGTERM, wantCode: 143},
		"SIGINT":  {sig: syscall.SIGINT, wantCode: 130},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			pidFile := filepath.Join(t.TempDir(), "pid")
			argv := []string{"sh", "-c", `echo $$ > "$0"; exec sleep 30`, pidFile}

			fp, err := procctl.CommandFingerprint(argv)
			if err != nil {
				t.Fatalf("CommandFingerprint() error: %v", err)
			}
			lockPath := filepath.Join(dir, fp.Hash())

			cli := exec.Command(os.Args[0], append([]string{"run-alone", "--lock-dir", dir, "--"}, argv...)...)
			cli.Env = append(os.Environ(), helperMainEnv+"=1")
			if err := cli.Start(); err != nil {
				t.Fatalf("start procctl: %v", err)
			}
			t.Cleanup(func() {
				if cli.ProcessState == nil {
					_ = cli.Process.Kill()
					_ = cli.Wait()
				}
			})

			pid := readPID(t, pidFile)
			if _, err := os.Stat(lockPath); err != nil {
				t.Fatalf("lock file missing while the command runs: %v", err)
			}

			if err := cli.Process.Signal(tc.sig); err != nil {
				t.Fatalf("signal procctl: %v", err)
			}

			// Once the lock file is gone the command must be gone too.
			err = wait.PollUntilContextTimeout(context.Background(), time.Millisecond, 10*time.Second, true,
				func(context.Context) (bool, error) {
					if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
						return false, nil
					}
					if procctl.IsRunning(pid) {
						return false, fmt.Errorf("lock released while command %d still runs", pid)
					}
					return true, nil
				})
			if err != nil {
				t.Fatalf("waiting for lock release: %v", err)
			}

			err = cli.Wait()
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) || exitErr.ExitCode() != tc.wantCode {
				t.Errorf("procctl exit = %v, want code %d", err, tc.wantCode)
			}
			if procctl.IsRunning(pid) {
				t.Errorf("command %d survived procctl", pid)
			}
		})
	}
}
