// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DefaultDataDir returns the directory that holds model artifacts, the
// training history log, and the corrections database.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pennywise"
	}
	return filepath.Join(home, ".local", "share", "pennywise")
}

// ModelDir returns the model artifact directory under dataDir.
func ModelDir(dataDir string) string {
	return filepath.Join(ExpandPath(dataDir), "models")
}

// HistoryPath returns the training-history log path under dataDir.
func HistoryPath(dataDir string) string {
	return filepath.Join(ExpandPath(dataDir), "training_history.json")
}

// DatabasePath returns the corrections database path under dataDir.
func DatabasePath(dataDir string) string {
	return filepath.Join(ExpandPath(dataDir), "pennywise.db")
}
