package catalog

import (
	"testing"

	"github.com/sitescout-io/sitescout/internal/models"
)

func TestBuildGoal(t *testing.T) {
	tests := []struct {
		name     string
		site     models.Site
		query    string
		wantURL  string
		wantGoal string
	}{
		{
			name:     "placeholder replaced",
			site:     models.Site{URL: "https://a.example", Goal: "Search for {{query}} and list prices."},
			query:    "usb hub",
			wantURL:  "https://a.example",
			wantGoal: "Search for usb hub and list prices.",
		},
		{
			name:     "placeholder replaced at every occurrence",
			site:     models.Site{URL: "https://a.example", Goal: "Find {{query}}. Sort {{query}} by price."},
			query:    "ssd",
			wantURL:  "https://a.example",
			wantGoal: "Find ssd. Sort ssd by price.",
		},
		{
			name:     "no placeholder appends query",
			site:     models.Site{URL: "https://b.example", Goal: "Collect the top results."},
			query:    "usb hub",
			wantURL:  "https://b.example",
			wantGoal: "Collect the top results. Query: usb hub",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, goal := BuildGoal(tt.site, tt.query)
			if url != tt.wantURL {
				t.Errorf("url = %q, want %q", url, tt.wantURL)
			}
			if goal != tt.wantGoal {
				t.Errorf("goal = %q, want %q", goal, tt.wantGoal)
			}
		})
	}
}

func TestEnabledPreservesFileOrder(t *testing.T) {
	c := &Catalog{sites: &models.SiteCatalog{
		Sites: []models.Site{
			{Name: "First", Enabled: true},
			{Name: "Off", Enabled: false},
			{Name: "Second", Enabled: true},
		},
	}}

	enabled := c.Enabled()
	if len(enabled) != 2 || enabled[0].Name != "First" || enabled[1].Name != "Second" {
		t.Errorf("Enabled() = %+v, want First then Second", enabled)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := &Catalog{sites: &models.SiteCatalog{
		Sites: []models.Site{{Name: "Only", Enabled: true}},
	}}

	all := c.All()
	all[0].Name = "Mutated"
	if c.All()[0].Name != "Only" {
		t.Error("All() exposed internal slice")
	}
}

func TestDefaultCatalogShapes(t *testing.T) {
	c := &Catalog{sites: models.NewSiteCatalog()}

	enabled := c.Enabled()
	if len(enabled) == 0 {
		t.Fatal("default catalog has no enabled sites")
	}
	for _, s := range enabled {
		url, goal := BuildGoal(s, "test query")
		if url == "" {
			t.Errorf("site %q has no URL", s.Name)
		}
		if goal == s.Goal {
			t.Errorf("site %q goal template did not render the query", s.Name)
		}
	}
}
