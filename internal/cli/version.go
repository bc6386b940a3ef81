package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sitescout-io/sitescout/internal/buildinfo"
	"github.com/sitescout-io/sitescout/internal/updater"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%s %s\n", styleBrand.Render("Sitescout"), styleVersion.Render(buildinfo.Version))
		fmt.Printf("  %s %s/%s\n", styleLabel.Render("OS/Arch:"), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  %s %s\n", styleLabel.Render("Go:"), runtime.Version())
		if buildinfo.CommitHash != "unknown" {
			fmt.Printf("  %s %s\n", styleLabel.Render("Commit:"), buildinfo.CommitHash)
		}

		if !versionCheck {
			return nil
		}

		fmt.Println("\nChecking for updates...")
		result, err := updater.CheckForUpdate()
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		if !result.Available {
			fmt.Printf("Already up to date (v%s).\n", result.CurrentVersion)
			return nil
		}
		fmt.Println(styleUpdate.Render(fmt.Sprintf("Update available: v%s -> v%s", result.CurrentVersion, result.LatestVersion)))
		fmt.Printf("%s %s\n", styleLabel.Render("Release:"), result.ReleaseURL)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}
