package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WriterLock is an exclusive advisory lock guarding library mutations across
// processes.
type WriterLock struct {
	lock *flock.Flock
}

// LockPath returns the lock file used for the library at dbPath.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// Lock acquires the writer lock for the library at dbPath without waiting.
// It fails with ErrLocked when another process holds it.
func Lock(dbPath string) (*WriterLock, error) {
	lockPath := LockPath(dbPath)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, lockPath)
	}
	return &WriterLock{lock: fl}, nil
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *WriterLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
