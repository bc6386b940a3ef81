// Package models defines the configuration data structures persisted as
// YAML under ~/.sitescout/.
package models

import "strings"

// Site is one target platform an automation agent can be pointed at.
type Site struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Goal    string `yaml:"goal"` // goal template; {{query}} is replaced per search
	Enabled bool   `yaml:"enabled"`
}

// SiteCatalog is the ordered list of configured sites.
// This corresponds to ~/.sitescout/sites.yaml. File order is display order.
type SiteCatalog struct {
	Version int    `yaml:"version"`
	Sites   []Site `yaml:"sites"`
}

// NewSiteCatalog returns the default catalog seeded on first run.
func NewSiteCatalog() *SiteCatalog {
	goal := "Search for {{query}}. Extract the top 5 results as JSON with fields: title, price, url, rating."
	return &SiteCatalog{
		Version: 1,
		Sites: []Site{
			{Name: "Amazon", URL: "https://www.amazon.com", Goal: goal, Enabled: true},
			{Name: "eBay", URL: "https://www.ebay.com", Goal: goal, Enabled: true},
			{Name: "Walmart", URL: "https://www.walmart.com", Goal: goal, Enabled: true},
			{Name: "Best Buy", URL: "https://www.bestbuy.com", Goal: goal, Enabled: false},
		},
	}
}

// EnabledSites returns the sites that should receive agents, in file order.
func (c *SiteCatalog) EnabledSites() []Site {
	var out []Site
	for _, s := range c.Sites {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// FindSite returns the index of the site with the given name
// (case-insensitive), or -1.
func (c *SiteCatalog) FindSite(name string) int {
	for i, s := range c.Sites {
		if strings.EqualFold(s.Name, name) {
			return i
		}
	}
	return -1
}
