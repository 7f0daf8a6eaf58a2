package procctl

import (
	"context"
	"fmt"

	"github.com/giantswarm/procctl/internal/command"
	"github.com/giantswarm/procctl/internal/exithook"
	"github.com/giantswarm/procctl/internal/fingerprint"
	"github.com/giantswarm/procctl/internal/guard"
	"github.com/giantswarm/procctl/internal/liveness"
	"github.com/giantswarm/procctl/internal/terminate"
)

// Outcome is how far Terminate had to escalate.
type Outcome = terminate.Outcome

// Terminal states of Terminate.
const (
	OutcomeNotRunning = terminate.NotRunning
	OutcomeKilled     = terminate.Killed
	OutcomeTerminated = terminate.Terminated
	OutcomeStillAlive = terminate.StillAlive
)

// Fingerprint identifies a unit of work guarded by RunAlone.
type Fingerprint = fingerprint.Fingerprint

// IsRunning reports whether the process with the given PID exists and can be
// signalled by the caller. A missing process is not an error.
func IsRunning(pid int) bool {
	return liveness.IsRunning(pid)
}

// Terminate kills the child process pid: SIGKILL, up to the kill timeout of
// polls, SIGTERM, a grace period, and finally a warning if the process is
// still alive. It returns ErrInvalidTarget for pid <= 0 and the context error
// if ctx ends first; a process that refuses to die is reported through the
// Outcome, not as an error.
func Terminate(ctx context.Context, pid int, opts ...TerminateOption) (Outcome, error) {
	cfg := defaultTerminateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	t := terminate.New(terminate.Config{
		KillTimeout:  cfg.KillTimeout,
		PollInterval: cfg.PollInterval,
		GracePeriod:  cfg.GracePeriod,
		Logger:       cfg.Logger,
	})
	return t.Terminate(ctx, pid)
}

// FingerprintOf returns the fingerprint RunAlone derives for fn.
func FingerprintOf(fn any) (Fingerprint, error) {
	return fingerprint.Of(fn)
}

// RunAlone runs work unless another instance of it is already running
// anywhere on the machine, and returns what work returns.
//
// Errors from RunAlone itself (ErrUndeterminableIdentity,
// ErrLockLocationUnavailable, ErrAlreadyRunning, ErrGuardBusy) are returned
// before work runs. An error or panic from work is propagated after the lock
// has been released and signal handling restored.
//
// There is no timeout on work; ctx only bounds the wait for the lock.
func RunAlone[T any](ctx context.Context, work func() (T, error), opts ...GuardOption) (T, error) {
	var result T
	cfg := applyGuardOptions(opts)

	var fp Fingerprint
	if cfg.Fingerprint != nil {
		fp = *cfg.Fingerprint
	} else {
		derived, err := fingerprint.Of(work)
		if err != nil {
			return result, fmt.Errorf("run alone: %w", err)
		}
		fp = derived
	}

	g := guard.New(guard.Config{
		LockDir:        cfg.LockDir,
		AcquireTimeout: cfg.AcquireTimeout,
		Logger:         cfg.Logger,
	})
	err := g.Run(ctx, fp, func() error {
		var workErr error
		result, workErr = work()
		return workErr
	})
	return result, err
}

// RunAloneFunc is RunAlone for work that returns only an error. The
// fingerprint is derived from work itself.
func RunAloneFunc(ctx context.Context, work func() error, opts ...GuardOption) error {
	if cfg := applyGuardOptions(opts); cfg.Fingerprint == nil {
		fp, err := fingerprint.Of(work)
		if err != nil {
			return fmt.Errorf("run alone: %w", err)
		}
		opts = append(opts[:len(opts):len(opts)], WithFingerprint(fp))
	}
	_, err := RunAlone(ctx, func() (struct{}, error) {
		return struct{}{}, work()
	}, opts...)
	return err
}

func applyGuardOptions(opts []GuardOption) guardConfig {
	cfg := defaultGuardConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Exit runs the registered exit-time cleanups, releasing the lock of a
// guarded call in progress, and terminates the program with code. Use it in
// place of os.Exit in programs that use RunAlone.
func Exit(code int) {
	exithook.Exit(code)
}

// RunInForeground runs argv synchronously, logging its combined output line
// by line. The system binary directories are prepended to PATH. A non-zero
// exit is reported as an *ExitError matching ErrCommandFailed.
func RunInForeground(ctx context.Context, argv []string) error {
	return command.RunInForeground(ctx, argv)
}

// CommandFingerprint returns the fingerprint under which RunAlone guards the
// external command argv: the binary resolved like RunInForeground resolves
// it, its base name, its arguments and "exit-status" as result.
func CommandFingerprint(argv []string) (Fingerprint, error) {
	return command.Fingerprint(argv)
}
