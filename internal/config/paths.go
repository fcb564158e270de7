package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/errors"
)

// GlobalConfigDir returns the path to the global dockfix configuration
// directory. This is typically ~/.dockfix on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ConfigDirName), nil
}

// ProjectConfigDir returns the relative path to the project configuration
// directory. This is always .dockfix relative to the project root.
func ProjectConfigDir() string {
	return constants.ConfigDirName
}

// GlobalConfigPath returns the full path to the global configuration file.
// This is typically ~/.dockfix/config.yaml on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file. This is always .dockfix/config.yaml relative to the project root.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.yaml")
}

// LogDir returns the path to the global dockfix log directory.
// This is typically ~/.dockfix/logs on Unix systems.
func LogDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogDirName), nil
}
