package procctl

import "time"

// Default configuration values.
const (
	// DefaultKillTimeout is the number of one-second polls Terminate waits
	// for a process to die after SIGKILL before falling back to SIGTERM.
	DefaultKillTimeout = 60

	// DefaultPollInterval is the delay between liveness polls after SIGKILL.
	DefaultPollInterval = time.Second

	// DefaultGracePeriod is how long Terminate waits after SIGTERM before
	// giving up with a warning.
	DefaultGracePeriod = 3 * time.Second

	// DefaultAcquireTimeout is how long RunAlone waits for a lock held by
	// another instance before returning ErrAlreadyRunning.
	DefaultAcquireTimeout = 5 * time.Second
)
