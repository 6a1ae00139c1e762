package config

import (
	"os"
	"path/filepath"
)

const appDirName = "mdviewer"

// GetConfigDir returns the directory holding config.toml and keybindings.json.
func GetConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDirName)
}

// GetDataDir returns the directory holding the library and saved archives.
func GetDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appDirName)
}

// LibraryPath is the location of library.json.
func LibraryPath() string {
	return filepath.Join(GetDataDir(), "library.json")
}

// StorageDir is where saved archives are written.
func StorageDir() string {
	return filepath.Join(GetDataDir(), "storage")
}
