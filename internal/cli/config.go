package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitescout-io/sitescout/internal/config"
)

var configureCmd = &cobra.Command{
	Use:     "configure",
	Aliases: []string{"config"},
	Short:   "Configure Sitescout settings",
	Long: `Configure Sitescout settings interactively.

This allows you to modify:
  - Automation service endpoint
  - Stream timeouts (idle, per-agent)
  - Result cache sizing and expiry
  - Telemetry opt-out

Press Enter to keep the current value for any setting.`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	endpoint := promptString(reader, "Service endpoint", settings.API.Endpoint)
	if endpoint != settings.API.Endpoint {
		settings.API.Endpoint = endpoint
		changed = true
	}

	fmt.Println("\nStream timeouts:")

	idle := promptInt(reader, "  Idle timeout (seconds)", settings.Search.IdleTimeoutSeconds)
	if idle != settings.Search.IdleTimeoutSeconds {
		settings.Search.IdleTimeoutSeconds = idle
		changed = true
	}

	overall := promptInt(reader, "  Per-agent timeout (seconds)", settings.Search.AgentTimeoutSeconds)
	if overall != settings.Search.AgentTimeoutSeconds {
		settings.Search.AgentTimeoutSeconds = overall
		changed = true
	}

	fmt.Println("\nResult cache:")

	entries := promptInt(reader, "  Max cached results", settings.Cache.Entries)
	if entries != settings.Cache.Entries {
		settings.Cache.Entries = entries
		changed = true
	}

	ttl := promptInt(reader, "  Cache TTL (minutes)", settings.Cache.TTLMinutes)
	if ttl != settings.Cache.TTLMinutes {
		settings.Cache.TTLMinutes = ttl
		changed = true
	}

	fmt.Println("\nTelemetry:")

	enabled := promptYesNoWithCurrent(reader, "Send anonymous usage events?", !settings.Telemetry.Disabled)
	if enabled == settings.Telemetry.Disabled {
		settings.Telemetry.Disabled = !enabled
		changed = true
	}

	if !changed {
		fmt.Println("\nNo changes made.")
		return nil
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println(styleSuccess.Render("\nSettings updated."))
	return nil
}
