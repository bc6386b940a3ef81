package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitescout-io/sitescout/internal/agent"
	"github.com/sitescout-io/sitescout/internal/catalog"
	"github.com/sitescout-io/sitescout/internal/config"
	"github.com/sitescout-io/sitescout/internal/models"
	"github.com/sitescout-io/sitescout/internal/orchestrator"
	"github.com/sitescout-io/sitescout/internal/telemetry"
	"github.com/sitescout-io/sitescout/internal/tui"
)

var (
	searchPlain   bool
	searchSites   []string
	searchTimeout int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search enabled sites in parallel",
	Long: `Search enabled sites in parallel.

One browser automation agent is dispatched per enabled site. Without
--plain an interactive dashboard shows live agent progress; with it,
progress lines go to stdout and results print as JSON at the end.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchPlain, "plain", false, "print progress lines instead of the dashboard")
	searchCmd.Flags().StringSliceVar(&searchSites, "site", nil, "restrict to named sites (repeatable)")
	searchCmd.Flags().IntVar(&searchTimeout, "timeout", 0, "per-agent timeout in seconds (overrides settings)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if searchPlain && query == "" {
		return fmt.Errorf("a query is required with --plain")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	apiKey := config.ResolveAPIKey(settings)
	if apiKey == "" {
		return fmt.Errorf("no API key configured. Run 'sitescout init' or set %s", config.APIKeyEnv)
	}

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load site catalog: %w", err)
	}

	sites, err := selectSites(cat, searchSites)
	if err != nil {
		return err
	}

	timeout := settings.AgentTimeout()
	if searchTimeout > 0 {
		timeout = time.Duration(searchTimeout) * time.Second
	}

	tele := telemetry.New(settings.Telemetry.Disabled)
	defer tele.Close()

	orch := orchestrator.New(orchestrator.Options{
		Endpoint:    settings.API.Endpoint,
		APIKey:      apiKey,
		IdleTimeout: settings.IdleTimeout(),
		Timeout:     timeout,
		Goals:       catalog.BuildGoal,
		Cache:       orchestrator.NewResultCache(settings.Cache.Entries, settings.CacheTTL()),
		Telemetry:   tele,
	})

	if searchPlain {
		return runPlainSearch(orch, query, sites)
	}
	return tui.Run(orch, cat, query, sites)
}

// selectSites resolves the --site filter against the catalog.
func selectSites(cat *catalog.Catalog, names []string) ([]models.Site, error) {
	enabled := cat.Enabled()
	if len(names) == 0 {
		if len(enabled) == 0 {
			return nil, fmt.Errorf("no enabled sites. Run 'sitescout sites list'")
		}
		return enabled, nil
	}

	var selected []models.Site
	for _, name := range names {
		found := false
		for _, s := range cat.All() {
			if strings.EqualFold(s.Name, name) {
				selected = append(selected, s)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no site named %q", name)
		}
	}
	return selected, nil
}

// runPlainSearch runs a search without the dashboard, printing progress
// deltas as they arrive. Ctrl-C cancels in-flight agents; agents that
// already completed keep their results.
func runPlainSearch(orch *orchestrator.Orchestrator, query string, sites []models.Site) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := orch.Dispatch(query, sites); err != nil {
		return err
	}
	fmt.Printf("%s %s %s\n", styleBrand.Render("Searching"), styleValue.Render(query),
		styleLabel.Render(fmt.Sprintf("(%d agents)", len(sites))))

	printed := make(map[string]agentProgress)
	cancelled := false
	for !orch.AllTerminal() {
		select {
		case <-ctx.Done():
			if !cancelled {
				cancelled = true
				fmt.Println(styleWarning.Render("Cancelling..."))
				orch.CancelAll()
			}
		case <-orch.Updates():
		case <-time.After(time.Second):
			// Drop-through so a coalesced-away notification can't stall us.
		}
		printProgress(orch.Snapshot(), printed)
	}
	printProgress(orch.Snapshot(), printed)

	return printResults(orch)
}

type agentProgress struct {
	status string
	step   string
}

func printProgress(snap orchestrator.Snapshot, printed map[string]agentProgress) {
	for _, a := range snap.Agents {
		last := printed[a.ID]
		label := styleValue.Render(a.Name)

		if a.StepMessage != "" && a.StepMessage != last.step {
			fmt.Printf("  %s %s\n", label, styleLabel.Render(a.StepMessage))
			last.step = a.StepMessage
		}

		status := string(a.Status)
		if status != last.status {
			switch {
			case a.Status.Failed():
				fmt.Printf("  %s %s %s\n", label, badgeFailed.Render("failed:"), a.Err)
			case a.Status == agent.StatusComplete:
				fmt.Printf("  %s %s\n", label, badgeDone.Render("complete"))
			case a.Status == agent.StatusCancelled:
				fmt.Printf("  %s %s\n", label, styleLabel.Render("cancelled"))
			}
			last.status = status
		}
		printed[a.ID] = last
	}
}

func printResults(orch *orchestrator.Orchestrator) error {
	results := orch.Results()
	if len(results) == 0 {
		fmt.Println(styleWarning.Render("No results."))
		return nil
	}

	type siteResult struct {
		Site   string          `json:"site"`
		Result json.RawMessage `json:"result"`
	}
	out := make([]siteResult, 0, len(results))
	for _, r := range results {
		out = append(out, siteResult{Site: r.Name, Result: r.Data})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
