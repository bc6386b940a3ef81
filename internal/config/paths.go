// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

// GlobalDirName is the name of the global Sitescout directory.
const GlobalDirName = ".sitescout"

// File names under the global directory.
const (
	SettingsFileName = "settings.yaml"
	SitesFileName    = "sites.yaml"
	LogFileName      = "sitescout.log"
)

// GlobalDir returns the path to the global Sitescout directory (~/.sitescout/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalSitesFile returns the path to the sites.yaml file.
func GlobalSitesFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SitesFileName), nil
}

// GlobalLogFile returns the path to the debug log file used while the TUI
// owns the terminal.
func GlobalLogFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// EnsureGlobalDir creates the global Sitescout directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
