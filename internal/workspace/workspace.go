package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another process holds the staging area.
var ErrLocked = errors.New("staging area is locked by another process")

// Workspace owns the staging directory where extracted chunk audio lives
// while a job runs. A file lock enforces single-process access: chunk file
// names are deterministic, so two concurrent runs over the same staging
// area would overwrite each other's audio.
type Workspace struct {
	root     string
	lockPath string
	lock     *flock.Flock
}

// New prepares a workspace rooted at stagingDir. The directory is created
// on first use, not here.
func New(stagingDir string) *Workspace {
	lockPath := filepath.Join(stagingDir, ".distill.lock")
	return &Workspace{
		root:     stagingDir,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
}

// Root returns the staging directory path.
func (w *Workspace) Root() string {
	return w.root
}

// LockPath returns the lock file path, for diagnostics.
func (w *Workspace) LockPath() string {
	return w.lockPath
}

// Acquire creates the staging directory and takes the staging lock,
// returning ErrLocked when another process already holds it.
func (w *Workspace) Acquire() error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire staging lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock file: %s)", ErrLocked, w.lockPath)
	}
	return nil
}

// Release drops the staging lock. Safe to call when not held.
func (w *Workspace) Release() error {
	return w.lock.Unlock()
}

// JobDir creates and returns the per-job staging subdirectory.
func (w *Workspace) JobDir(jobID string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" || strings.ContainsAny(jobID, `/\`) {
		return "", fmt.Errorf("invalid job id %q", jobID)
	}
	dir := filepath.Join(w.root, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create job staging dir: %w", err)
	}
	return dir, nil
}

// CleanJob removes a job's staging subdirectory and everything in it.
func (w *Workspace) CleanJob(jobID string) error {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" || strings.ContainsAny(jobID, `/\`) {
		return fmt.Errorf("invalid job id %q", jobID)
	}
	return os.RemoveAll(filepath.Join(w.root, jobID))
}
