package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir     string
	DataDir     string
	ConfigDir   string
	LogFile     string
	HistoryFile string
	ConfigFile  string
	EnvFile     string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		configDir := filepath.Join(homeDir, ".config")
		defaultPaths = &Paths{
			HomeDir:     homeDir,
			DataDir:     filepath.Join(homeDir, ".shcopilot"),
			ConfigDir:   configDir,
			LogFile:     filepath.Join(homeDir, ".shcopilot", "shcopilot.log"),
			HistoryFile: filepath.Join(homeDir, ".shcopilot", "history.db"),
			ConfigFile:  filepath.Join(configDir, "shcopilot.yaml"),
			EnvFile:     filepath.Join(configDir, "shcopilot.env"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func HistoryFile() string {
	ensureDefaultPaths()
	return defaultPaths.HistoryFile
}

// ConfigFile is the YAML configuration read at startup and by `config edit`.
func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

// EnvFile holds optional KEY=value pairs (API keys) loaded into the environment.
func EnvFile() string {
	ensureDefaultPaths()
	return defaultPaths.EnvFile
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
