//go:build !linux && !darwin

package lockdir

import "os"

func defaultDir() string {
	return os.TempDir()
}
