// Package lock keeps a second dread process from playing at the same time.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/zjrosen/dread/internal/log"
)

// FileName is the lock file created in the data directory.
const FileName = "dread.lock"

// ErrHeld is returned when another process holds the lock.
var ErrHeld = errors.New("another dread instance is already playing")

// Instance is a held single-instance lock.
type Instance struct {
	lock *flock.Flock
}

// Acquire takes the lock in dir without waiting.
func Acquire(dir string) (*Instance, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	log.Debug(log.CatCLI, "Acquired instance lock", "path", path)
	return &Instance{lock: fl}, nil
}

// Path returns the lock file path.
func (i *Instance) Path() string {
	return i.lock.Path()
}

// Release unlocks. Safe to call more than once.
func (i *Instance) Release() error {
	if !i.lock.Locked() {
		return nil
	}
	if err := i.lock.Unlock(); err != nil {
		log.Warn(log.CatCLI, "Failed to release instance lock", "path", i.lock.Path(), "error", err.Error())
		return err
	}
	return nil
}
