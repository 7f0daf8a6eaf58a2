package logging

import (
	"log/slog"
	"sync/atomic"
)

// custom is the logger installed with SetLogger. Nil means Logger falls back
// to the cached default.
var custom atomic.Pointer[slog.Logger]

// cached holds slog.Default() with the component attribute attached. It is
// derived lazily on the first Logger call and dropped by SetLogger so that a
// later slog.SetDefault can be picked up with SetLogger(nil).
var cached atomic.Pointer[slog.Logger]

// Logger returns the current procctl logger. It never returns nil and is safe
// for concurrent use.
func Logger() *slog.Logger {
	if l := custom.Load(); l != nil {
		return l
	}
	if l := cached.Load(); l != nil {
		return l
	}
	l := slog.Default().With("component", "procctl")
	if cached.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := cached.Load(); l2 != nil {
		return l2
	}
	return l
}

// SetLogger replaces the procctl logger. A nil l restores the default,
// re-derived from slog.Default() on the next Logger call.
func SetLogger(l *slog.Logger) {
	custom.Store(l)
	cached.Store(nil)
}

// OrDefault returns l when non-nil and Logger() otherwise. Components that
// accept an optional logger use it to resolve their field once at
// construction.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Logger()
}
