// Package guard runs a unit of work as the only instance of itself on the
// machine.
//
// A guarded call locks <lock dir>/<sha256 of the work's fingerprint> for the
// duration of the work. While it runs, SIGINT and SIGTERM are intercepted:
// the handler releases the lock, runs the exit hooks and exits with
// 128+signal. An exit hook releases the lock when the program leaves through
// exithook.Exit. On normal return the lock is released, the hook removed and
// the previous signal disposition restored, in that order, on every path
// including a panicking work function.
//
// The currently held lock lives in a single process-wide slot because the
// signal handler has no other way to reach it. Only one guarded call may run
// per process at a time.
package guard
