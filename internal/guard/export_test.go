package guard

// NewForTesting returns a Guard with the given signal notifier and exit
// function.
func NewForTesting(cfg Config, n Notifier, exit func(int)) *Guard {
	g := New(cfg)
	g.notifier = n
	g.exit = exit
	return g
}

// HoldingLock reports whether the process-wide slot holds a lock.
func HoldingLock() bool { return current.Load() != nil }

// Active reports whether a guarded call is in progress.
func Active() bool { return active.Load() }
