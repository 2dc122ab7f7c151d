// Package paths resolves where taskflow keeps its config.yaml and its stored
// collections.
//
// Both directories follow the same precedence: an explicit flag, then an
// environment variable, then the platform default. The data directory also
// honours data_dir from config.yaml between the flag and the environment.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "taskflow"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TASKFLOW_CONFIG_DIR"
	EnvDataDir   = "TASKFLOW_DATA_DIR"
)

// platformDir holds platform lookups that tests replace.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// appDir returns the per-user directory for AppName. On Linux it is
// $xdgEnv/taskflow, falling back to ~/<linuxFallback...>/taskflow; elsewhere
// it sits under os.UserConfigDir.
func appDir(xdgEnv string, linuxFallback ...string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, linuxFallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/taskflow (fallback ~/.config/taskflow)
// macOS:   ~/Library/Application Support/taskflow
// Windows: %APPDATA%/taskflow
func DefaultConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/taskflow (fallback ~/.local/share/taskflow)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return appDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir applies flag > TASKFLOW_CONFIG_DIR > DefaultConfigDir.
// Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config.yaml data_dir > TASKFLOW_DATA_DIR >
// DefaultDataDir. Explicit values are made absolute.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	for _, v := range []string{flag, configYAMLValue, os.Getenv(EnvDataDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	return DefaultDataDir()
}
