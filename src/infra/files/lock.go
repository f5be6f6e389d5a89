package files

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the watched root to keep a second organizer
// away from the same directory.
const LockFileName = ".downsort.lock"

// ErrLocked is returned when another process already holds the root lock.
var ErrLocked = errors.New("another downsort instance is already organizing this directory")

// InstanceLock is an exclusive advisory lock on a watched root.
type InstanceLock struct {
	lock *flock.Flock
}

// AcquireInstanceLock takes the root lock without blocking.
func AcquireInstanceLock(root string) (*InstanceLock, error) {
	lock := flock.New(filepath.Join(root, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &InstanceLock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *InstanceLock) Path() string {
	return l.lock.Path()
}

// Release unlocks the root. The lock file itself is left in place.
func (l *InstanceLock) Release() error {
	return l.lock.Unlock()
}
