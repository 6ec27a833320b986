// Package runlock guards an output root against concurrent runs. Two runs
// sharing a cache root would race on the processing log and partially written
// stage artifacts, so acquisition is mandatory before any job is dispatched.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"vidmill/internal/services"
)

// Lock is an advisory file lock over one output root.
type Lock struct {
	path string
	lock *flock.Flock
}

// New prepares a lock at the given path without acquiring it.
func New(path string) *Lock {
	return &Lock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Acquire takes the lock, failing immediately if another run holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrValidation, "", "lock",
			fmt.Sprintf("another run already holds %s", l.path), nil)
	}
	return nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}
