// Package catalog holds the in-memory site catalog and keeps it in sync
// with ~/.sitescout/sites.yaml.
package catalog

import (
	"strings"
	"sync"

	"github.com/sitescout-io/sitescout/internal/config"
	"github.com/sitescout-io/sitescout/internal/models"
)

// QueryPlaceholder is the token in a site's goal template that gets
// replaced with the user's search query.
const QueryPlaceholder = "{{query}}"

// Catalog is a thread-safe view over the persisted site catalog.
type Catalog struct {
	mu    sync.RWMutex
	sites *models.SiteCatalog
}

// Load reads the catalog from disk, falling back to the seeded default
// when the file does not exist.
func Load() (*Catalog, error) {
	sites, err := config.LoadSites()
	if err != nil {
		return nil, err
	}
	return &Catalog{sites: sites}, nil
}

// Reload re-reads the catalog from disk, replacing the in-memory copy.
func (c *Catalog) Reload() error {
	sites, err := config.LoadSites()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sites = sites
	c.mu.Unlock()
	return nil
}

// Enabled returns the sites that should receive agents, in file order.
func (c *Catalog) Enabled() []models.Site {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sites.EnabledSites()
}

// All returns a copy of every configured site, in file order.
func (c *Catalog) All() []models.Site {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Site, len(c.sites.Sites))
	copy(out, c.sites.Sites)
	return out
}

// BuildGoal renders a site's goal template for a query and returns the
// (target URL, goal) pair handed to an agent. Templates without the
// query placeholder get the query appended so the agent always sees it.
func BuildGoal(site models.Site, query string) (string, string) {
	goal := site.Goal
	if strings.Contains(goal, QueryPlaceholder) {
		goal = strings.ReplaceAll(goal, QueryPlaceholder, query)
	} else {
		goal = strings.TrimSpace(goal + " Query: " + query)
	}
	return site.URL, goal
}
