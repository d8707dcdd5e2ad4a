package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// outputLock guards an output directory against concurrent runs.
type outputLock struct {
	path string
	lock *flock.Flock
}

func acquireOutputLock(dir string) (*outputLock, error) {
	path := filepath.Join(dir, lockFile)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another skyarea run is writing to " + dir)
	}
	return &outputLock{path: path, lock: lock}, nil
}

// release removes the lock file while still holding the lock, then unlocks,
// so a finished run leaves only its outputs behind.
func (l *outputLock) release() error {
	if l == nil {
		return nil
	}
	removeErr := os.Remove(l.path)
	if errors.Is(removeErr, fs.ErrNotExist) {
		removeErr = nil
	}
	return errors.Join(removeErr, l.lock.Unlock())
}
