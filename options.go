package procctl

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/procctl/internal/fingerprint"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("procctl: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonNegative panics if v < 0 with a descriptive message.
func requireNonNegative[T int | time.Duration](name string, v T) {
	if v < 0 {
		panic(fmt.Sprintf("procctl: %s must not be negative, got %v", name, v))
	}
}

// TerminateOption configures a Terminate call.
//
// The With* constructors panic on invalid values. Option values are almost
// always constants, so an invalid one is a programming error best reported at
// the call site.
type TerminateOption func(*terminateConfig)

type terminateConfig struct {
	KillTimeout  int
	PollInterval time.Duration
	GracePeriod  time.Duration
	Logger       *slog.Logger
}

func defaultTerminateConfig() terminateConfig {
	return terminateConfig{
		KillTimeout:  DefaultKillTimeout,
		PollInterval: DefaultPollInterval,
		GracePeriod:  DefaultGracePeriod,
	}
}

// WithKillTimeout sets how many times Terminate polls for the process to die
// after SIGKILL. Zero skips straight to SIGTERM after a single check.
//
// Default: 60.
//
// Panics if polls < 0.
func WithKillTimeout(polls int) TerminateOption {
	requireNonNegative("kill timeout", polls)
	return func(c *terminateConfig) {
		c.KillTimeout = polls
	}
}

// WithPollInterval sets the delay between liveness polls after SIGKILL.
//
// Default: 1 second.
//
// Panics if d <= 0.
func WithPollInterval(d time.Duration) TerminateOption {
	requirePositive("poll interval", d)
	return func(c *terminateConfig) {
		c.PollInterval = d
	}
}

// WithGracePeriod sets how long Terminate waits after SIGTERM.
//
// Default: 3 seconds.
//
// Panics if d < 0.
func WithGracePeriod(d time.Duration) TerminateOption {
	requireNonNegative("grace period", d)
	return func(c *terminateConfig) {
		c.GracePeriod = d
	}
}

// WithTerminateLogger sets the logger for a single Terminate call.
func WithTerminateLogger(l *slog.Logger) TerminateOption {
	return func(c *terminateConfig) {
		c.Logger = l
	}
}

// GuardOption configures a RunAlone call.
type GuardOption func(*guardConfig)

type guardConfig struct {
	LockDir        string
	AcquireTimeout time.Duration
	Fingerprint    *fingerprint.Fingerprint
	Logger         *slog.Logger
}

func defaultGuardConfig() guardConfig {
	return guardConfig{
		AcquireTimeout: DefaultAcquireTimeout,
	}
}

// WithLockDir places lock files in dir instead of the platform default. The
// directory must exist and be writable.
//
// Panics if dir is empty.
func WithLockDir(dir string) GuardOption {
	if dir == "" {
		panic("procctl: lock directory must not be empty")
	}
	return func(c *guardConfig) {
		c.LockDir = dir
	}
}

// WithAcquireTimeout sets how long RunAlone waits for a lock held by another
// instance.
//
// Default: 5 seconds.
//
// Panics if d <= 0.
func WithAcquireTimeout(d time.Duration) GuardOption {
	requirePositive("acquire timeout", d)
	return func(c *guardConfig) {
		c.AcquireTimeout = d
	}
}

// WithFingerprint keys the lock by fp instead of the fingerprint derived
// from the work function. Use it when the work is a closure whose identity
// depends on captured data, such as a wrapper around an external command.
// fp.Module must name an existing file.
func WithFingerprint(fp Fingerprint) GuardOption {
	return func(c *guardConfig) {
		c.Fingerprint = &fp
	}
}

// WithGuardLogger sets the logger for a single RunAlone call.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(c *guardConfig) {
		c.Logger = l
	}
}
