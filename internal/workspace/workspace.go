// Package workspace provides scoped temporary directories for processing
// operations. Every Acquire must be paired with a deferred Release so the
// directory is removed on all exit paths.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var ErrAcquire = fmt.Errorf("failed to acquire workspace")

// Manager creates and destroys workspaces under a single parent directory.
// The zero value is not usable; use NewManager.
type Manager struct {
	parentDir string
}

// NewManager returns a Manager rooted at parentDir. An empty parentDir falls
// back to the system temp directory.
func NewManager(parentDir string) *Manager {
	if parentDir == "" {
		parentDir = os.TempDir()
	}
	return &Manager{parentDir: parentDir}
}

// Workspace is a uniquely-named scratch directory owned by one operation.
type Workspace struct {
	dir string
}

// Acquire creates a fresh workspace directory. Names are unique per call, so
// nested and concurrent acquisitions never collide.
func (m *Manager) Acquire() (*Workspace, error) {
	dir := filepath.Join(m.parentDir, "workbench-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcquire, err)
	}

	slog.Debug("Acquired workspace", "dir", dir)
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Release removes the workspace and everything in it. Safe to call from a
// defer; an already-removed workspace is not an error.
func (w *Workspace) Release() {
	if w == nil || w.dir == "" {
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		slog.Warn("Failed to release workspace", "dir", w.dir, "error", err)
		return
	}
	slog.Debug("Released workspace", "dir", w.dir)
}
