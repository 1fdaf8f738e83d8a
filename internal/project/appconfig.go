// Package project handles persistence: the application configuration
// and saved optimization jobs, both stored as JSON files.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/RollCut/internal/model"
)

// DefaultConfigDir returns the default directory for application
// configuration. On all platforms this is ~/.rollcut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".rollcut")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path. If the file
// does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	var config model.AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	// Ensure RecentJobs is never nil and limits are usable
	if config.RecentJobs == nil {
		config.RecentJobs = []string{}
	}
	config.Solver = config.Solver.Normalized()
	return config, nil
}

// maxRecentJobs bounds the recent-jobs list in the config file.
const maxRecentJobs = 10

// AddRecentJob prepends a job path to the recent list, dropping
// duplicates and trimming to the maximum length.
func AddRecentJob(config *model.AppConfig, path string) {
	updated := []string{path}
	for _, p := range config.RecentJobs {
		if p != path {
			updated = append(updated, p)
		}
	}
	if len(updated) > maxRecentJobs {
		updated = updated[:maxRecentJobs]
	}
	config.RecentJobs = updated
}
