package procctl

import (
	"log/slog"

	"github.com/giantswarm/procctl/internal/logging"
)

// SetLogger replaces the logger used by procctl. The default is
// slog.Default() with a "component"="procctl" attribute. Passing nil restores
// the default, re-derived from slog.Default() on next use.
//
// SetLogger is safe for concurrent use, but components constructed before the
// call (a Terminate or RunAlone already in progress) keep the logger they
// started with.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}
