// Package store holds the mock-mode record storage for regdesk.
//
// Each resource lives in a Collection: an insertion-ordered list guarded
// by a mutex, seeded once at startup and mutated only through its methods.
// Collections satisfy the service layer's repository interface, so the
// service code never knows whether it talks to memory or to a backend.
//
// The package also resolves the per-user directories regdesk writes to,
// following the XDG Base Directory Specification:
//   - Config: ~/.config/regdesk/ (config file, saved session)
//   - Data:   ~/.local/share/regdesk/ (operator seed data)
package store

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "regdesk"

// DefaultDataDir returns the default data directory following XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "data")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", AppName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Local", AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// DefaultConfigDir returns the default config directory following XDG spec.
func DefaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "config")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Preferences", AppName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Roaming", AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultSeedDir returns the directory scanned for operator seed files.
func DefaultSeedDir() string {
	return filepath.Join(DefaultDataDir(), "seed")
}
