// Package terminate escalates the termination of a child process.
//
// The escalation is best effort and bounded: SIGKILL first, then a poll once
// per interval for a fixed number of attempts, then SIGTERM followed by a
// fixed grace period, and finally a warning that the process has to be killed
// by hand. The SIGKILL-before-SIGTERM order is intentional and relied upon by
// callers; do not swap it.
//
// Only an invalid PID is reported as an error. Every later failure, including
// a process that survives all signals, is logged and reported through the
// returned Outcome.
package terminate
