// Package config manages roboplan configuration and filesystem paths.
//
// The default data root is ~/.roboplan/ containing plans/ (plan history) and
// config.yaml. The root can be moved with ROBOPLAN_ROOT.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by roboplan.
type Paths struct {
	// Root is the base directory for all roboplan data (default: ~/.roboplan)
	Root string

	// Plans is the directory containing plan history records
	Plans string

	// Config is the path to the config file
	Config string
}

// DefaultPaths returns the default paths for roboplan.
// Paths can be overridden with environment variables:
// - ROBOPLAN_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("ROBOPLAN_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".roboplan")
	}

	return PathsAt(root), nil
}

// PathsAt returns the layout rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:   root,
		Plans:  filepath.Join(root, "plans"),
		Config: filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Plans} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
