package filelock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/giantswarm/procctl/internal/sentinel"
)

// ErrContended is returned by Acquire when the lock is still held by someone
// else once the timeout elapses.
const ErrContended = sentinel.Error("lock is held by another process")

// retryInterval is the delay between lock attempts while waiting.
const retryInterval = 50 * time.Millisecond

// Lock is an acquired exclusive lock. The zero value is not usable; obtain
// one from Acquire.
type Lock struct {
	fl   *flock.Flock
	once sync.Once
	err  error
}

// Acquire takes an exclusive lock on path, creating the file if needed. It
// waits up to timeout for a competing holder to release it and returns
// ErrContended when it does not. Cancellation of ctx aborts the wait and
// returns the context error.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("acquire %s: timeout must be positive, got %v", path, timeout)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		fl := flock.New(path)

		locked, err := fl.TryLockContext(waitCtx, retryInterval)
		if err != nil {
			_ = fl.Close()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("acquire %s: %w", path, ctxErr)
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("acquire %s after %v: %w", path, timeout, ErrContended)
			}
			return nil, fmt.Errorf("acquire %s: %w", path, err)
		}
		if !locked {
			_ = fl.Close()
			return nil, fmt.Errorf("acquire %s after %v: %w", path, timeout, ErrContended)
		}

		same, err := stillLinked(fl)
		if err != nil {
			_ = fl.Close()
			return nil, fmt.Errorf("acquire %s: %w", path, err)
		}
		if same {
			return &Lock{fl: fl}, nil
		}

		// The previous holder removed the file between our open and our
		// lock; the inode we hold is orphaned. Start over on the new path.
		_ = fl.Close()
		if err := waitCtx.Err(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("acquire %s: %w", path, ctxErr)
			}
			return nil, fmt.Errorf("acquire %s after %v: %w", path, timeout, ErrContended)
		}
	}
}

// stillLinked reports whether the path of fl still refers to the locked file.
func stillLinked(fl *flock.Flock) (bool, error) {
	held, err := fl.Stat()
	if err != nil {
		return false, fmt.Errorf("stat locked file: %w", err)
	}
	onDisk, err := os.Stat(fl.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat lock path: %w", err)
	}
	return os.SameFile(held, onDisk), nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release removes the lock file and drops the lock. Only the first call does
// any work; later calls return the first call's error. A lock file that was
// already removed by someone else is reported as an error wrapping
// fs.ErrNotExist, but the lock itself is still dropped.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	l.once.Do(func() {
		var rmErr error
		if err := os.Remove(l.fl.Path()); err != nil {
			rmErr = fmt.Errorf("remove lock file: %w", err)
		}
		// Close unlocks before closing the descriptor.
		var closeErr error
		if err := l.fl.Close(); err != nil {
			closeErr = fmt.Errorf("unlock %s: %w", l.fl.Path(), err)
		}
		l.err = errors.Join(rmErr, closeErr)
	})
	return l.err
}

// Held reports whether path currently exists, which for locks managed by this
// package means some process holds it.
func Held(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
