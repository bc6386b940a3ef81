package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitescout-io/sitescout/internal/config"
	"github.com/sitescout-io/sitescout/internal/models"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage the site catalog",
}

var sitesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List configured sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := config.LoadSites()
		if err != nil {
			return fmt.Errorf("failed to load site catalog: %w", err)
		}

		if len(catalog.Sites) == 0 {
			fmt.Println(styleHint.Render("No sites configured. Run 'sitescout sites add' to add one."))
			return nil
		}

		for _, s := range catalog.Sites {
			badge := badgeDisabled.Render("[ ]")
			if s.Enabled {
				badge = badgeEnabled.Render("[x]")
			}
			fmt.Printf("%s %s  %s\n", badge, styleValue.Render(s.Name), styleLabel.Render(s.URL))
		}
		return nil
	},
}

var sitesEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a site so searches dispatch an agent to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSiteEnabled(args[0], true)
	},
}

var sitesDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a site without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSiteEnabled(args[0], false)
	},
}

var siteGoal string

var sitesAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a site to the catalog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]

		catalog, err := config.LoadSites()
		if err != nil {
			return fmt.Errorf("failed to load site catalog: %w", err)
		}
		if catalog.FindSite(name) >= 0 {
			return fmt.Errorf("site %q already exists", name)
		}

		goal := siteGoal
		if goal == "" {
			goal = models.NewSiteCatalog().Sites[0].Goal
		}
		catalog.Sites = append(catalog.Sites, models.Site{
			Name:    name,
			URL:     url,
			Goal:    goal,
			Enabled: true,
		})

		if err := config.SaveSites(catalog); err != nil {
			return fmt.Errorf("failed to save site catalog: %w", err)
		}
		fmt.Printf("%s %s\n", styleSuccess.Render("Added"), name)
		return nil
	},
}

var sitesRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a site from the catalog",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := config.LoadSites()
		if err != nil {
			return fmt.Errorf("failed to load site catalog: %w", err)
		}

		i := catalog.FindSite(args[0])
		if i < 0 {
			return fmt.Errorf("no site named %q", args[0])
		}
		removed := catalog.Sites[i].Name
		catalog.Sites = append(catalog.Sites[:i], catalog.Sites[i+1:]...)

		if err := config.SaveSites(catalog); err != nil {
			return fmt.Errorf("failed to save site catalog: %w", err)
		}
		fmt.Printf("%s %s\n", styleSuccess.Render("Removed"), removed)
		return nil
	},
}

func setSiteEnabled(name string, enabled bool) error {
	catalog, err := config.LoadSites()
	if err != nil {
		return fmt.Errorf("failed to load site catalog: %w", err)
	}

	i := catalog.FindSite(name)
	if i < 0 {
		return fmt.Errorf("no site named %q", name)
	}
	catalog.Sites[i].Enabled = enabled

	if err := config.SaveSites(catalog); err != nil {
		return fmt.Errorf("failed to save site catalog: %w", err)
	}

	verb := "Disabled"
	if enabled {
		verb = "Enabled"
	}
	fmt.Printf("%s %s\n", styleSuccess.Render(verb), catalog.Sites[i].Name)
	return nil
}

func init() {
	sitesAddCmd.Flags().StringVar(&siteGoal, "goal", "", "goal template; {{query}} is replaced per search")

	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesEnableCmd)
	sitesCmd.AddCommand(sitesDisableCmd)
	sitesCmd.AddCommand(sitesAddCmd)
	sitesCmd.AddCommand(sitesRemoveCmd)
}
