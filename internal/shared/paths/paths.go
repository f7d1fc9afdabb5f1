package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName names the per-user data directory
const AppName = "autothinker"

// Environment overrides, checked in order
const (
	HomeEnv    = "AUTOTHINKER_HOME"
	XDGDataEnv = "XDG_DATA_HOME"
)

// DatabaseFile is the SQLite file used for local storage
const DatabaseFile = "blueprints.db"

// DataDir returns the per-user data directory without creating it
func DataDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return filepath.Clean(dir), nil
	}
	if dir := os.Getenv(XDGDataEnv); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate data directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// Database returns the local SQLite path, creating its directory
func Database() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, DatabaseFile), nil
}
