package utils

import (
	"os"
	"path/filepath"
)

// GetProjectRoot returns the closest ancestor of the working directory that
// holds a go.mod, or "." when there is none.
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "." // fallback
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "." // fallback
}

// DefaultConfigPath returns stillwater.yaml under the project root.
func DefaultConfigPath() string {
	return filepath.Join(GetProjectRoot(), "stillwater.yaml")
}
