package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sitescout-io/sitescout/internal/config"
	"github.com/sitescout-io/sitescout/internal/models"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up Sitescout configuration",
	Long: `Set up Sitescout configuration.

This will:
  1. Create the ~/.sitescout/ directory
  2. Prompt for your automation service API key
  3. Seed the default site catalog (sites.yaml)
  4. Write settings.yaml`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Prompt for API key. Hide input when attached to a terminal.
	keyState := "not set"
	if settings.API.Key != "" {
		keyState = "set, press Enter to keep"
	} else if os.Getenv(config.APIKeyEnv) != "" {
		keyState = "using " + config.APIKeyEnv + ", press Enter to keep"
	}
	fmt.Printf("API key [%s]: ", keyState)

	key, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	if key != "" {
		settings.API.Key = key
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	// Seed the site catalog on first run only; an existing file may
	// carry user edits.
	sitesPath, err := config.GlobalSitesFile()
	if err != nil {
		return err
	}
	if !config.FileExists(sitesPath) {
		if err := config.SaveSites(models.NewSiteCatalog()); err != nil {
			return fmt.Errorf("failed to seed site catalog: %w", err)
		}
		fmt.Println(styleSuccess.Render("Seeded default site catalog."))
	}

	fmt.Println(styleSuccess.Render("\nSitescout initialized."))
	fmt.Println("\nNext steps:")
	fmt.Printf("  - Run %s to see configured sites\n", styleCommand.Render("'sitescout sites list'"))
	fmt.Printf("  - Run %s to start searching\n", styleCommand.Render("'sitescout search <query>'"))
	return nil
}

// readSecret reads a line without echo when stdin is a terminal,
// falling back to plain input otherwise (pipes, CI).
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line), nil
}
