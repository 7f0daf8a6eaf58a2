package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/giantswarm/procctl/internal/exithook"
	"github.com/giantswarm/procctl/internal/logging"
	"github.com/giantswarm/procctl/internal/sentinel"
)

const (
	// ErrEmptyCommand is returned by RunInForeground for an empty argv.
	ErrEmptyCommand = sentinel.Error("command must not be empty")

	// ErrCommandFailed is returned when the command cannot be started or
	// exits unsuccessfully. Use errors.As with *ExitError for the status.
	ErrCommandFailed = sentinel.Error("command failed")
)

// extraPath is prepended to PATH so that tools installed in the usual system
// locations are found even under a minimal cron or service environment.
const extraPath = "/usr/local/bin:/usr/local/sbin:/usr/bin:/usr/sbin:/bin:/sbin"

// waitDelay bounds how long Wait keeps copying output after the command has
// exited or been killed, when a descendant still holds the pipe open.
const waitDelay = 2 * time.Second

// ExitError describes a command that ran and exited unsuccessfully.
type ExitError struct {
	Code   int            // exit status, or -1 when killed by a signal
	Signal syscall.Signal // terminating signal, zero when the command exited
}

func (e *ExitError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("process terminated by signal %s", e.Signal)
	}
	return fmt.Sprintf("process returned non-zero exit code %d", e.Code)
}

// Is makes errors.Is(err, ErrCommandFailed) hold for every ExitError.
func (e *ExitError) Is(target error) bool {
	return target == ErrCommandFailed
}

// RunInForeground runs argv and waits for it. Output is logged at info level,
// one record per line, with the command name attached. Cancelling ctx kills
// the command, and so does exithook.Run while the command is running.
func RunInForeground(ctx context.Context, argv []string) error {
	return run(ctx, logging.Logger(), argv)
}

func run(ctx context.Context, log *slog.Logger, argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return ErrEmptyCommand
	}
	log = log.With("command", argv[0])
	log.Debug("running command", "args", strings.Join(argv, " "))

	env := Environ()
	cmd := exec.CommandContext(ctx, lookPath(argv[0], env), argv[1:]...)
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	// A program leaving through exithook, for instance on a signal caught
	// while the command runs under a lock, kills and reaps the command first.
	started := make(chan struct{})
	exited := make(chan struct{})
	hookID := exithook.Register(func() {
		<-started
		if cmd.Process == nil {
			return
		}
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			log.Warn("unable to kill command on exit", "pid", cmd.Process.Pid, "error", err)
		}
		<-exited
	})
	defer exithook.Unregister(hookID)

	err := cmd.Start()
	close(started)
	if err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return fmt.Errorf("%w: error while running command: %w", ErrCommandFailed, err)
	}

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			log.Info(strings.TrimSpace(scanner.Text()))
		}
		// Keep draining so a long line does not block the child.
		_, _ = io.Copy(io.Discard, pr)
	}()

	waitErr := cmd.Wait()
	close(exited)
	_ = pw.Close()
	<-copied

	return interpretWait(waitErr)
}

// interpretWait turns the cmd.Wait result into an *ExitError.
func interpretWait(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e := &ExitError{Code: exitErr.ExitCode()}
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			e.Signal = status.Signal()
		}
		return e
	}
	return fmt.Errorf("%w: error while running command: %w", ErrCommandFailed, err)
}

// Environ returns the current environment with extraPath prepended to PATH.
func Environ() []string {
	env := os.Environ()
	for i, kv := range env {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			env[i] = "PATH=" + extraPath + ":" + v
			return env
		}
	}
	return append(env, "PATH="+extraPath)
}

// lookPath resolves name against the PATH in env. exec.Command would search
// the parent's PATH, which lacks extraPath.
func lookPath(name string, env []string) string {
	if strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	for i := len(env) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(env[i], "PATH="); ok {
			for _, dir := range strings.Split(v, string(os.PathListSeparator)) {
				if dir == "" {
					continue
				}
				candidate := dir + string(os.PathSeparator) + name
				if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() && info.Mode()&0o111 != 0 {
					return candidate
				}
			}
			break
		}
	}
	return name
}
