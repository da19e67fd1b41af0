package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// DefaultLockName is the lock file name inside the data directory.
const DefaultLockName = "index.lock"

// Ensure FileLock implements the interface.
var _ driven.IndexLock = (*FileLock)(nil)

// FileLock serialises index passes across processes sharing a data directory.
type FileLock struct {
	mu     sync.Mutex
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock at <dir>/index.lock. The file is created on
// first use.
func NewFileLock(dir string) *FileLock {
	lockPath := filepath.Join(dir, DefaultLockName)
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another holder has it.
func (l *FileLock) TryLock() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return false, fmt.Errorf("creating lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquiring lock: %w", err)
	}
	l.locked = acquired
	return acquired, nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (l *FileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.locked {
		return nil
	}
	l.locked = false

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}
