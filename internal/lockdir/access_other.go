//go:build !unix

package lockdir

import "os"

// writable probes dir by creating and removing a temporary file.
func writable(dir string) error {
	f, err := os.CreateTemp(dir, ".procctl-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
