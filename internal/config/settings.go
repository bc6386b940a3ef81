package config

import (
	"os"

	"github.com/sitescout-io/sitescout/internal/models"
)

// APIKeyEnv is the environment variable that overrides the configured API key.
const APIKeyEnv = "SITESCOUT_API_KEY"

// LoadSettings loads the global settings from ~/.sitescout/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSettings)
}

// SaveSettings saves the global settings to ~/.sitescout/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// ResolveAPIKey returns the API key to use: the environment override when
// set, otherwise the configured key.
func ResolveAPIKey(settings *models.Settings) string {
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key
	}
	return settings.API.Key
}
