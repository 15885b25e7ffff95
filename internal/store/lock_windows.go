//go:build windows

package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock is an advisory lock held for the duration of a generation run. On
// Windows it is the exclusive creation of the lock file.
type Lock struct {
	file *os.File
	path string
}

// NewLock creates a lock at path. The lock is not acquired until Acquire is
// called.
func NewLock(path string) *Lock {
	return &Lock{path: path}
}

// Acquire creates the lock file, failing if it already exists.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("another generation is running, lock file: %s", l.path)
		}
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		f.Close()
		_ = os.Remove(l.path)
		return fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	l.file = f
	return nil
}

// Release closes and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}
	l.file = nil

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
