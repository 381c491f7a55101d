// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
)

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".facet"
	DefaultDataDirName   = ".facet-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "FACET_CONFIG_DIR"
	EnvDataDir   = "FACET_DATA_DIR"
)

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > FACET_CONFIG_DIR env > $(CWD)/.facet.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultConfigDirName), nil
}

// ResolveDataDir returns the data directory following the precedence
// chain: flag > config.yaml value > FACET_DATA_DIR env > $(CWD)/.facet-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
