// Package procctl controls the lifecycle of processes: it checks whether a
// process is alive, escalates the termination of a child process, and runs a
// function as the only instance of itself on the machine.
//
// # Liveness and termination
//
//	if procctl.IsRunning(pid) {
//	    outcome, err := procctl.Terminate(ctx, pid, procctl.WithKillTimeout(10))
//	    if err != nil {
//	        return err // invalid pid or ctx ended
//	    }
//	    if !outcome.Dead() {
//	        // already logged: the process needs manual attention
//	    }
//	}
//
// Terminate sends SIGKILL, polls once per second up to the kill timeout, then
// sends SIGTERM and waits three seconds. It never fails because a process
// refuses to die; the Outcome says how far the escalation went.
//
// # Single-instance execution
//
//	count, err := procctl.RunAlone(ctx, rebuildSearchIndex)
//	if errors.Is(err, procctl.ErrAlreadyRunning) {
//	    log.Print("another rebuild is in progress")
//	}
//
// RunAlone derives a fingerprint from where rebuildSearchIndex is defined,
// its qualified name and its signature, and holds an exclusive lock on
// <lock dir>/<sha256 of the fingerprint> while the function runs. SIGINT and
// SIGTERM received during the run release the lock and exit with status
// 128+signal. Programs that call os.Exit while a guarded function may be
// running should call Exit instead so that the lock is released.
//
// The lock directory is /var/run/lock on Linux and /var/tmp on macOS and must
// already exist and be writable.
package procctl
