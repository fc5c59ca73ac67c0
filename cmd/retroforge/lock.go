package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// acquireApplyLock takes an advisory lock inside the library root so two
// apply-mode invocations cannot mutate the same tree concurrently. The
// returned release function is safe to call once.
func acquireApplyLock(root string) (func(), error) {
	lock := flock.New(filepath.Join(root, ".retroforge.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another retroforge apply is already running in %s", root)
	}
	return func() { _ = lock.Unlock() }, nil
}
