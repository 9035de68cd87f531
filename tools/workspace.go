// Workspace - request-scoped base directory for document tools.
//
// The navigation tool changes this value instead of the process working
// directory, so concurrent requests cannot leak directory changes into each
// other.

package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Workspace holds the current base directory against which the document
// tools resolve relative paths. Safe for concurrent use.
type Workspace struct {
	mu   sync.RWMutex
	base string
}

// NewWorkspace creates a workspace rooted at base. An empty base defaults to
// the process working directory at creation time.
func NewWorkspace(base string) (*Workspace, error) {
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace base: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace base %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace base %s is not a directory", abs)
	}
	return &Workspace{base: abs}, nil
}

// Base returns the current base directory.
func (w *Workspace) Base() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.base
}

// Resolve turns path into an absolute path relative to the current base.
// Absolute paths pass through cleaned; empty paths resolve to the base.
func (w *Workspace) Resolve(path string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if path == "" || path == "." {
		return w.base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(w.base, path)
}

// ChangeDir moves the base directory to path, which must exist and be a
// directory. Returns the resolved absolute directory.
func (w *Workspace) ChangeDir(path string) (string, error) {
	resolved := w.Resolve(path)

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to change directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("failed to change directory: %s is not a directory", resolved)
	}

	w.mu.Lock()
	w.base = resolved
	w.mu.Unlock()

	return resolved, nil
}

// blockedPath reports whether any element of path is one of the refused
// directory names. Checked before any filesystem access.
func blockedPath(path string) bool {
	for _, elem := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if elem == ".git" || elem == "node_modules" {
			return true
		}
	}
	return false
}
