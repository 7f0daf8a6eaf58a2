// Package exithook keeps a registry of cleanup functions that must run before
// the process exits.
//
// Go runs no deferred calls on os.Exit, so code that needs exit-time cleanup
// registers it here and programs exit through Exit instead of os.Exit. The
// singleton guard registers the release of its lock as a hook for as long as
// a guarded call is running.
package exithook
