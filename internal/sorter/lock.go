package sorter

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

var (
	activeMu   sync.Mutex
	activeRuns = map[string]bool{}
)

// runLock guards one destination for the duration of a run: an in-process
// registry plus an advisory file lock that other processes honour. The lock
// file lives in the temp dir because the destination must start empty.
type runLock struct {
	dest string
	file *flock.Flock
}

func lockPath(dest string) string {
	sum := sha256.Sum256([]byte(dest))
	return filepath.Join(os.TempDir(), fmt.Sprintf("photosort-%x.lock", sum[:8]))
}

func acquireRunLock(dest string) (*runLock, error) {
	activeMu.Lock()
	if activeRuns[dest] {
		activeMu.Unlock()
		return nil, configError(dest, ErrRunActive)
	}
	activeRuns[dest] = true
	activeMu.Unlock()

	fl := flock.New(lockPath(dest))
	ok, err := fl.TryLock()
	if err != nil || !ok {
		activeMu.Lock()
		delete(activeRuns, dest)
		activeMu.Unlock()
		if err != nil {
			return nil, ioError(PhasePreflight, fl.Path(), fmt.Errorf("acquire run lock: %w", err))
		}
		return nil, configError(dest, ErrRunActive)
	}
	return &runLock{dest: dest, file: fl}, nil
}

func (l *runLock) release() {
	_ = l.file.Unlock()
	activeMu.Lock()
	delete(activeRuns, l.dest)
	activeMu.Unlock()
}
