package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - GROUNDCMS_CONFIG_PATH: config file location (default: ~/.config/groundcms.toml)
//   - GROUNDCMS_HOME: base directory for groundcms data (default: ~/.local/share/groundcms)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"data_dir":    filepath.Join(baseDir, "data"),
		"uploads_dir": filepath.Join(baseDir, "uploads"),
	}, nil
}

// getConfigPath returns the config file path, checking GROUNDCMS_CONFIG_PATH
// env var first, then falling back to the default ~/.config/groundcms.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("GROUNDCMS_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "groundcms.toml"), nil
}

// getBaseDir returns the base directory for groundcms data, checking
// GROUNDCMS_HOME env var first, then falling back to the XDG default
// ~/.local/share/groundcms.
func getBaseDir() (string, error) {
	if path := os.Getenv("GROUNDCMS_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "groundcms"), nil
}
