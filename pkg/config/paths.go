package config

import (
	"os"
	"path/filepath"
)

// Paths holds the filesystem locations used by the uploader.
type Paths struct {
	BaseDir string
}

func (p Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir, "config.toml")
}

func (p Paths) StateFile() string {
	return filepath.Join(p.BaseDir, "state.json")
}

// Ensure creates the base directory if it does not exist.
func (p Paths) Ensure() error {
	return os.MkdirAll(p.BaseDir, 0o755)
}

// DefaultPaths returns the per-user data directory.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	return Paths{BaseDir: filepath.Join(home, ".viscose-uploader")}, nil
}
