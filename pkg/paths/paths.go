// Package paths provides centralized path handling for filebutler.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for filebutler
	EnvConfigDir = "FILEBUTLER_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for filebutler
	EnvDataDir = "FILEBUTLER_DATA_DIR"

	// EnvStateDir overrides the XDG state directory for filebutler
	EnvStateDir = "FILEBUTLER_STATE_DIR"
)

// Default directories and files. These define filebutler's on-disk
// layout and are not user-configurable.
const (
	// AppDirName is the directory name for filebutler-specific files
	AppDirName = "filebutler"

	// ConfigFile is the name of the main configuration file
	ConfigFile = "config.toml"

	// DatabaseFile is the name of the sqlite database file
	DatabaseFile = "data.db"

	// TrashStagingDir is the subdirectory holding staged (recoverable) deletions
	TrashStagingDir = "trash_staging"

	// LogFile is the name of the application log file
	LogFile = "filebutler.log"
)

// ConfigDir returns the directory holding the main configuration file,
// creating it if necessary.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		_ = os.MkdirAll(dir, 0755)
		return dir
	}
	dir := filepath.Join(xdg.ConfigHome, AppDirName)
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// DataDir returns the directory holding the database and trash staging
// area, creating it if necessary.
func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		_ = os.MkdirAll(dir, 0755)
		return dir
	}
	dir := filepath.Join(xdg.DataHome, AppDirName)
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// StateDir returns the directory holding log files, creating it if
// necessary.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		_ = os.MkdirAll(dir, 0755)
		return dir
	}
	dir := filepath.Join(xdg.StateHome, AppDirName)
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// ConfigFilePath returns the full path of the main configuration file.
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), ConfigFile)
}

// DatabasePath returns the full path of the sqlite database file.
func DatabasePath() string {
	return filepath.Join(DataDir(), DatabaseFile)
}

// TrashStagingPath returns the directory files are staged into when a
// scheduled deletion executes, creating it if necessary.
func TrashStagingPath() string {
	dir := filepath.Join(DataDir(), TrashStagingDir)
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// LogFilePath returns the full path of the application log file.
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFile)
}
