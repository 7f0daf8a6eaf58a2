package procctl

import (
	"github.com/giantswarm/procctl/internal/command"
	"github.com/giantswarm/procctl/internal/fingerprint"
	"github.com/giantswarm/procctl/internal/guard"
	"github.com/giantswarm/procctl/internal/lockdir"
	"github.com/giantswarm/procctl/internal/terminate"
)

// Sentinel errors for use with errors.Is. All of them are constants.
const (
	// ErrInvalidTarget is returned by Terminate for an unset or non-positive PID.
	ErrInvalidTarget = terminate.ErrInvalidTarget

	// ErrUndeterminableIdentity is returned by RunAlone when the work's
	// fingerprint cannot be derived: its defining file does not exist or its
	// name is empty.
	ErrUndeterminableIdentity = fingerprint.ErrUndeterminable

	// ErrLockLocationUnavailable is returned by RunAlone when the lock
	// directory is missing or not writable. No signal handler has been
	// installed when it is returned.
	ErrLockLocationUnavailable = lockdir.ErrUnavailable

	// ErrAlreadyRunning is returned by RunAlone when another process holds
	// the lock for the same fingerprint beyond the acquire timeout. The work
	// has not run.
	ErrAlreadyRunning = guard.ErrAlreadyRunning

	// ErrGuardBusy is returned by RunAlone when called while another RunAlone
	// is active in the same process.
	ErrGuardBusy = guard.ErrBusy

	// ErrEmptyCommand is returned by RunInForeground for an empty argv.
	ErrEmptyCommand = command.ErrEmptyCommand

	// ErrCommandFailed is returned by RunInForeground when the command cannot
	// be started or exits unsuccessfully.
	ErrCommandFailed = command.ErrCommandFailed
)

// ExitError carries the exit status of a command run by RunInForeground.
type ExitError = command.ExitError
