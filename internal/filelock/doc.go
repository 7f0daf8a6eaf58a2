// Package filelock provides an exclusive, bounded-wait lock on a file path.
//
// Locks are advisory flock(2) locks held through github.com/gofrs/flock, so
// the kernel drops them when the holder dies, even on SIGKILL. The lock file
// exists on disk exactly while it is held: Release removes it before
// unlocking, and Acquire re-checks after locking that the path still names
// the file it locked, retrying when a concurrent Release removed it.
package filelock
