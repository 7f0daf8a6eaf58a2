package lockdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/procctl/internal/sentinel"
)

// ErrUnavailable is returned by Check when the directory is missing, is not
// a directory, or is not writable by the current process.
const ErrUnavailable = sentinel.Error("lock location unavailable")

// Default returns the platform lock directory.
func Default() string {
	return defaultDir()
}

// Resolve returns dir when non-empty and Default() otherwise, after checking
// it with Check.
func Resolve(dir string) (string, error) {
	if dir == "" {
		dir = Default()
	}
	if err := Check(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Check verifies that dir exists, is a directory, and is writable. It never
// creates the directory.
func Check(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q does not exist", ErrUnavailable, dir)
		}
		return fmt.Errorf("%w: stat %q: %w", ErrUnavailable, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrUnavailable, dir)
	}
	if err := writable(dir); err != nil {
		return fmt.Errorf("%w: %q exists but is not writable: %w", ErrUnavailable, dir, err)
	}
	return nil
}

// Path joins dir and name into the lock file path.
func Path(dir, name string) string {
	return filepath.Join(dir, name)
}
