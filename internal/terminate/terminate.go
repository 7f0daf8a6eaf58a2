package terminate

import (
	"context"
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/procctl/internal/liveness"
	"github.com/giantswarm/procctl/internal/logging"
	"github.com/giantswarm/procctl/internal/sentinel"
)

// ErrInvalidTarget is returned by Terminate for an unset or non-positive PID.
const ErrInvalidTarget = sentinel.Error("invalid target process")

// Outcome is the terminal state of an escalation.
type Outcome int

const (
	// NotRunning means the process was already gone; no signal was sent.
	NotRunning Outcome = iota
	// Killed means the process died after SIGKILL.
	Killed
	// Terminated means the process survived SIGKILL and died after SIGTERM.
	Terminated
	// StillAlive means the process survived every signal.
	StillAlive
)

func (o Outcome) String() string {
	switch o {
	case NotRunning:
		return "not-running"
	case Killed:
		return "killed"
	case Terminated:
		return "terminated"
	case StillAlive:
		return "still-alive"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Dead reports whether the outcome leaves the process gone.
func (o Outcome) Dead() bool {
	return o != StillAlive
}

// Config configures a Terminator.
type Config struct {
	KillTimeout  int           // SIGKILL poll attempts; negative values count as 0
	PollInterval time.Duration // delay between SIGKILL polls
	GracePeriod  time.Duration // wait after SIGTERM before the final check
	Logger       *slog.Logger  // nil uses the procctl logger
}

// Terminator runs the escalation. It holds no per-call state and is safe for
// concurrent use on different PIDs.
type Terminator struct {
	cfg       Config
	log       *slog.Logger
	isRunning func(pid int) bool
	signal    func(pid int, sig syscall.Signal) error
}

// New returns a Terminator that probes and signals real processes.
func New(cfg Config) *Terminator {
	if cfg.KillTimeout < 0 {
		cfg.KillTimeout = 0
	}
	return &Terminator{
		cfg:       cfg,
		log:       logging.OrDefault(cfg.Logger),
		isRunning: liveness.IsRunning,
		signal:    liveness.Signal,
	}
}

// Terminate escalates the termination of pid. The returned error is non-nil
// only for an invalid pid or when ctx ends before the escalation finishes.
func (t *Terminator) Terminate(ctx context.Context, pid int) (Outcome, error) {
	if pid <= 0 {
		return NotRunning, fmt.Errorf("terminate pid %d: %w", pid, ErrInvalidTarget)
	}
	log := t.log.With("pid", pid)

	if !t.isRunning(pid) {
		log.Warn("child process is not running, maybe it's dead already?")
		return NotRunning, nil
	}

	log.Info("sending SIGKILL to child process")
	if err := t.signal(pid, syscall.SIGKILL); err != nil {
		log.Warn("unable to send SIGKILL to child process", "error", err)
	}

	dead, err := t.pollUntilDead(ctx, log, pid)
	if err != nil {
		return StillAlive, err
	}
	if dead {
		return Killed, nil
	}

	log.Warn("SIGKILL didn't work, sending SIGTERM to child process")
	if err := t.signal(pid, syscall.SIGTERM); err != nil {
		log.Warn("unable to send SIGTERM to child process", "error", err)
	}

	if err := sleep(ctx, t.cfg.GracePeriod); err != nil {
		return StillAlive, fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	if !t.isRunning(pid) {
		return Terminated, nil
	}

	log.Warn("even SIGKILL didn't do anything, kill child process manually")
	return StillAlive, nil
}

// pollUntilDead checks the process KillTimeout+1 times with PollInterval in
// between: one check per second of budget plus a final check once the budget
// is spent. It reports whether the process died.
func (t *Terminator) pollUntilDead(ctx context.Context, log *slog.Logger, pid int) (bool, error) {
	backoff := wait.Backoff{
		Duration: t.cfg.PollInterval,
		Factor:   1,
		Steps:    t.cfg.KillTimeout + 1,
	}

	retry := 0
	dead := false
	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(context.Context) (bool, error) {
		if !t.isRunning(pid) {
			dead = true
			return true, nil
		}
		if retry < t.cfg.KillTimeout {
			log.Info("child process is still up", "retry", retry)
		}
		retry++
		return false, nil
	})
	if dead {
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, fmt.Errorf("terminate pid %d: %w", pid, ctxErr)
	}
	if err != nil && !wait.Interrupted(err) {
		log.Warn("polling child process failed", "error", err)
	}
	return false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
