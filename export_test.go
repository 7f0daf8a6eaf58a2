package procctl

import "time"

// TerminateConfigSnapshot is a copy of terminateConfig for assertions in
// package procctl_test.
type TerminateConfigSnapshot struct {
	KillTimeout  int
	PollInterval time.Duration
	GracePeriod  time.Duration
}

// ApplyTerminateOptionsForTesting applies opts to the defaults.
func ApplyTerminateOptionsForTesting(opts ...TerminateOption) TerminateConfigSnapshot {
	cfg := defaultTerminateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return TerminateConfigSnapshot{
		KillTimeout:  cfg.KillTimeout,
		PollInterval: cfg.PollInterval,
		GracePeriod:  cfg.GracePeriod,
	}
}

// GuardConfigSnapshot is a copy of guardConfig for assertions in package
// procctl_test.
type GuardConfigSnapshot struct {
	LockDir        string
	AcquireTimeout time.Duration
	Fingerprint    *Fingerprint
}

// ApplyGuardOptionsForTesting applies opts to the defaults.
func ApplyGuardOptionsForTesting(opts ...GuardOption) GuardConfigSnapshot {
	cfg := applyGuardOptions(opts)
	return GuardConfigSnapshot{
		LockDir:        cfg.LockDir,
		AcquireTimeout: cfg.AcquireTimeout,
		Fingerprint:    cfg.Fingerprint,
	}
}
