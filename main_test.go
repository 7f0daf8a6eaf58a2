package procctl_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/giantswarm/procctl"
)

// The test binary doubles as a helper process: when helperModeEnv is set it
// holds a guarded lock instead of running tests, so that tests can exercise
// real cross-process contention and real signal delivery.
const (
	helperModeEnv    = "PROCCTL_TEST_HELPER"
	helperLockDirEnv = "PROCCTL_TEST_LOCK_DIR"
	helperReadyEnv   = "PROCCTL_TEST_READY"
)

func TestMain(m *testing.M) {
	if os.Getenv(helperModeEnv) == "hold" {
		os.Exit(runHolder())
	}
	os.Exit(m.Run())
}

func runHolder() int {
	_, err := procctl.RunAlone(context.Background(), holdLock,
		procctl.WithLockDir(os.Getenv(helperLockDirEnv)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

// holdLock announces that the lock is held and then sleeps until the test
// signals the process.
func holdLock() (int, error) {
	if ready := os.Getenv(helperReadyEnv); ready != "" {
		if err := os.WriteFile(ready, nil, 0o600); err != nil {
			return 0, err
		}
	}
	time.Sleep(time.Minute)
	return 0, nil
}
