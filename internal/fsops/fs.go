// Package fsops provides the filesystem operations roboplan needs for its
// data directory.
//
// Plan history and generated config files are written through the FS
// interface so that writes are atomic (temp file + rename) and record IDs are
// validated before they are turned into paths.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FS is the subset of filesystem behavior used by roboplan's stores.
type FS interface {
	// AtomicWrite writes data to path using a temp file in the same directory
	// followed by a rename.
	AtomicWrite(path string, data []byte, perm os.FileMode) error

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// Remove removes a single file.
	Remove(path string) error

	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// ListFiles returns the names of regular files in dir with the given
	// suffix, sorted. A missing directory yields an empty list.
	ListFiles(dir, suffix string) ([]string, error)

	// ValidateIdentifier rejects IDs that could escape their directory.
	ValidateIdentifier(id string) error
}

// RealFS implements FS on the local filesystem.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// AtomicWrite writes data to path atomically using temp file + rename.
func (fs *RealFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".roboplan-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	tmpFile = nil
	return nil
}

// ReadFile reads the entire contents of a file.
func (fs *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove removes a single file.
func (fs *RealFS) Remove(path string) error {
	return os.Remove(path)
}

// Exists checks if a path exists.
func (fs *RealFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ListFiles returns sorted names of regular files in dir ending in suffix.
// Temp files left behind by an interrupted AtomicWrite are skipped.
func (fs *RealFS) ListFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".roboplan-tmp-") || !strings.HasSuffix(name, suffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateIdentifier validates an identifier (e.g. a plan ID) for safety.
// Returns an error if the identifier contains path separators or traversal.
func (fs *RealFS) ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("invalid identifier: empty")
	}

	if strings.Contains(id, string(filepath.Separator)) || strings.Contains(id, "/") || strings.Contains(id, "\\") {
		return fmt.Errorf("invalid identifier: must not contain path separators")
	}

	if id == "." || id == ".." || (strings.HasPrefix(id, ".") && len(id) > 1 && id[1] == '.') {
		return fmt.Errorf("invalid identifier: path traversal not allowed")
	}

	return nil
}
