package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/giantswarm/procctl/internal/exithook"
	"github.com/giantswarm/procctl/internal/filelock"
	"github.com/giantswarm/procctl/internal/fingerprint"
	"github.com/giantswarm/procctl/internal/lockdir"
	"github.com/giantswarm/procctl/internal/logging"
	"github.com/giantswarm/procctl/internal/sentinel"
)

const (
	// ErrAlreadyRunning is returned when another process holds the lock for
	// the same fingerprint past the acquire timeout.
	ErrAlreadyRunning = sentinel.Error("another instance is already running")

	// ErrBusy is returned when a guarded call is already active in this
	// process.
	ErrBusy = sentinel.Error("a guarded call is already active in this process")
)

// DefaultAcquireTimeout bounds the wait for a contended lock.
const DefaultAcquireTimeout = 5 * time.Second

// handledSignals are intercepted for the duration of a guarded call.
var handledSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

var (
	// current is the lock held by the active guarded call, if any. The signal
	// handler and the exit hook reach the lock only through it.
	current atomic.Pointer[filelock.Lock]

	// active is set while a guarded call is between its busy check and its
	// final cleanup.
	active atomic.Bool

	// slotMu is held from the start of lock acquisition until the acquired
	// lock is in current, so that a release never misses a lock in flight.
	slotMu sync.Mutex
)

// Notifier is the subset of os/signal used to intercept signals.
type Notifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type osNotifier struct{}

func (osNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
func (osNotifier) Stop(c chan<- os.Signal)                     { signal.Stop(c) }

// Config configures a Guard.
type Config struct {
	// LockDir overrides the platform lock directory.
	LockDir string
	// AcquireTimeout bounds the wait for a contended lock. Zero uses
	// DefaultAcquireTimeout.
	AcquireTimeout time.Duration
	// Logger defaults to the procctl logger.
	Logger *slog.Logger
}

// Guard runs work under a per-fingerprint exclusive lock.
type Guard struct {
	cfg      Config
	log      *slog.Logger
	notifier Notifier
	exit     func(code int)
}

// New returns a Guard that intercepts real signals and exits the process on
// them.
func New(cfg Config) *Guard {
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	return &Guard{
		cfg:      cfg,
		log:      logging.OrDefault(cfg.Logger),
		notifier: osNotifier{},
		exit:     os.Exit,
	}
}

// Run executes work while holding the lock for fp and returns work's error.
//
// Failures to validate fp, resolve the lock directory or take the lock are
// returned before work runs and before any signal handler is installed or
// after it has been removed again. Lock release failures after work returns
// are logged, never returned.
func (g *Guard) Run(ctx context.Context, fp fingerprint.Fingerprint, work func() error) error {
	if err := fp.Validate(); err != nil {
		return err
	}
	hash := fp.Hash()
	log := g.log.With("fingerprint", fp.String(), "hash", hash)
	log.Debug("computed function fingerprint")

	dir, err := lockdir.Resolve(g.cfg.LockDir)
	if err != nil {
		return err
	}

	if !active.CompareAndSwap(false, true) {
		return fmt.Errorf("run %s: %w", fp.Name, ErrBusy)
	}
	defer active.Store(false)

	restore := g.installHandlers(log)
	hookID := exithook.Register(func() { g.releaseCurrent(log) })
	uninstall := func() {
		exithook.Unregister(hookID)
		restore()
	}

	path := lockdir.Path(dir, hash)
	slotMu.Lock()
	lock, err := filelock.Acquire(ctx, path, g.cfg.AcquireTimeout)
	if err == nil {
		current.Store(lock)
	}
	slotMu.Unlock()
	if err != nil {
		uninstall()
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return fmt.Errorf("run %s: %w", fp.Name, err)
		}
		return fmt.Errorf("run %s: %w: %w", fp.Name, ErrAlreadyRunning, err)
	}
	log.Debug("acquired lock", "path", path)

	defer func() {
		g.releaseCurrent(log)
		uninstall()
	}()

	return work()
}

// releaseCurrent empties the slot and releases whatever lock it held. The
// swap makes the first caller the only one to see the lock.
func (g *Guard) releaseCurrent(log *slog.Logger) {
	slotMu.Lock()
	l := current.Swap(nil)
	slotMu.Unlock()
	if l == nil {
		log.Debug("nothing to unlock")
		return
	}
	if err := l.Release(); err != nil {
		// The lock file may have been removed by another process.
		log.Warn("unlocking file failed", "path", l.Path(), "error", err)
	}
}

// installHandlers starts intercepting handledSignals and returns a function
// that stops intercepting them and waits for the handler goroutine to finish.
func (g *Guard) installHandlers(log *slog.Logger) (restore func()) {
	ch := make(chan os.Signal, 1)
	g.notifier.Notify(ch, handledSignals...)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		select {
		case sig := <-ch:
			g.onSignal(log, sig)
		case <-done:
			// A signal that arrived before Stop still wins.
			select {
			case sig := <-ch:
				g.onSignal(log, sig)
			default:
			}
		}
	}()

	return func() {
		g.notifier.Stop(ch)
		close(done)
		<-finished
	}
}

// onSignal runs on the handler goroutine. It touches nothing but the slot and
// the exit hooks. Hooks registered during the work, such as the one killing a
// foreground command, run before the guard's own hook releases the lock.
func (g *Guard) onSignal(log *slog.Logger, sig os.Signal) {
	log.Info("caught signal, unlocking", "signal", sig.String())
	exithook.Run()
	g.releaseCurrent(log)
	g.exit(ExitCode(sig))
}

// ExitCode maps a signal to the conventional shell exit status 128+signum.
func ExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
