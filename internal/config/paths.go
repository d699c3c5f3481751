package config

import (
	"os"
	"path/filepath"
)

// DefaultFileName is the config file looked up in the project root.
const DefaultFileName = "refgraph.yaml"

// ConfigEnv names the environment variable overriding the config file path.
const ConfigEnv = "REFGRAPH_CONFIG"

// DefaultConfigFile returns the default config file path of a project.
func DefaultConfigFile(projectRoot string) string {
	if projectRoot == "" {
		projectRoot = "."
	}
	return filepath.Join(projectRoot, DefaultFileName)
}

// GetConfigFile returns the config file path for projectRoot.
// If REFGRAPH_CONFIG is set, it takes precedence.
func GetConfigFile(projectRoot string) string {
	if envPath := os.Getenv(ConfigEnv); envPath != "" {
		return envPath
	}
	return DefaultConfigFile(projectRoot)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// ~username is not supported
	return path, nil
}
