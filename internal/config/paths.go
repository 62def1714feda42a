// Package config resolves conanci's data paths and loads the per-project
// build configuration.
package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvHome overrides the data directory.
	EnvHome = "CONANCI_HOME"
	// EnvDB overrides the full path of the run history database.
	EnvDB = "CONANCI_DB"
)

// DataDir returns the directory used to store conanci data.
func DataDir() (string, error) {
	if d := os.Getenv(EnvHome); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".conanci"), nil
}

// EnsureDataDir returns DataDir after creating it when missing.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

// DBPath returns the full path to the SQLite database file.
func DBPath() (string, error) {
	if p := os.Getenv(EnvDB); p != "" {
		return p, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "conanci.db"), nil
}
