package config

import (
	"github.com/sitescout-io/sitescout/internal/models"
)

// LoadSites loads the site catalog from ~/.sitescout/sites.yaml.
// If the file doesn't exist, returns the default catalog.
func LoadSites() (*models.SiteCatalog, error) {
	path, err := GlobalSitesFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSiteCatalog)
}

// SaveSites saves the site catalog to ~/.sitescout/sites.yaml.
func SaveSites(catalog *models.SiteCatalog) error {
	path, err := GlobalSitesFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, catalog)
}
