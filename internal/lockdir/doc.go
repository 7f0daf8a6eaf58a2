// Package lockdir resolves the directory that holds procctl's per-fingerprint
// lock files and checks that it can be used.
//
// The platform default favours a directory that is cleared on reboot so that
// lock files never outlive the machine's uptime: /var/run/lock on Linux,
// /var/tmp on macOS (where /var/run is not world-writable), and the system
// temp directory elsewhere.
package lockdir
