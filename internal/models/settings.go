package models

import "time"

// APIConfig holds credentials and endpoint for the automation service.
type APIConfig struct {
	Key      string `yaml:"key"`
	Endpoint string `yaml:"endpoint"`
}

// SearchConfig holds per-agent stream timeouts.
type SearchConfig struct {
	IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds"`  // no bytes for this long = dead stream
	AgentTimeoutSeconds int `yaml:"agent_timeout_seconds"` // overall bound per agent run
}

// CacheConfig holds result cache sizing and expiry.
type CacheConfig struct {
	Entries    int `yaml:"entries"`
	TTLMinutes int `yaml:"ttl_minutes"`
}

// TelemetryConfig holds the usage-analytics opt-out.
type TelemetryConfig struct {
	Disabled bool `yaml:"disabled"`
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	CheckOnStartup bool       `yaml:"check_on_startup"`
	LastChecked    *time.Time `yaml:"last_checked,omitempty"`
}

// Settings represents global application settings.
// This corresponds to ~/.sitescout/settings.yaml.
type Settings struct {
	Version   int             `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Updates   UpdatesConfig   `yaml:"updates"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		API: APIConfig{
			Key:      "", // resolved from SITESCOUT_API_KEY when empty
			Endpoint: "https://agent.tinyfish.ai/v1/automation/run-sse",
		},
		Search: SearchConfig{
			IdleTimeoutSeconds:  60,
			AgentTimeoutSeconds: 360,
		},
		Cache: CacheConfig{
			Entries:    128,
			TTLMinutes: 15,
		},
		Telemetry: TelemetryConfig{
			Disabled: false,
		},
		Updates: UpdatesConfig{
			CheckOnStartup: false,
			LastChecked:    nil,
		},
	}
}

// IdleTimeout returns the idle timeout as a duration.
func (s *Settings) IdleTimeout() time.Duration {
	return time.Duration(s.Search.IdleTimeoutSeconds) * time.Second
}

// AgentTimeout returns the overall per-agent timeout as a duration.
func (s *Settings) AgentTimeout() time.Duration {
	return time.Duration(s.Search.AgentTimeoutSeconds) * time.Second
}

// CacheTTL returns the result cache TTL as a duration.
func (s *Settings) CacheTTL() time.Duration {
	return time.Duration(s.Cache.TTLMinutes) * time.Minute
}
