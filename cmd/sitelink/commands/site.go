package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/creds"
	"github.com/sitelinkhq/sitelink/pkg/ui"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Manage connected sites",
	Long: `List, switch, remove, and resync connected sites.
	A site is added by signing in to it with 'sitelink login'.`,
	RunE: runSiteList,
}

func init() {
	siteCmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List connected sites",
			RunE:    runSiteList,
		},
		&cobra.Command{
			Use:   "switch [name]",
			Short: "Switch the selected site",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runSiteSwitch,
		},
		&cobra.Command{
			Use:   "remove [name]",
			Short: "Remove a site and its saved credentials",
			Args:  cobra.ExactArgs(1),
			RunE:  runSiteRemove,
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Refresh the selected site's metadata",
			RunE:  runSiteSync,
		},
	)
}

// requireSites loads the global config and returns nil when no sites are
// connected yet, printing a hint in that case.
func requireSites() (*config.GlobalConfig, error) {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if len(cfg.Sites) == 0 {
		ui.Info("No sites connected. Run 'sitelink login' to add one.")
		return nil, nil // nil config signals "nothing to do"
	}
	return cfg, nil
}

// findSite resolves a user-supplied name against site names and hosts.
func findSite(cfg *config.GlobalConfig, name string) (string, bool) {
	for id, site := range cfg.Sites {
		if site.Name == name || creds.NormalizeBaseSiteURL(site.URL) == creds.NormalizeBaseSiteURL(name) {
			return id, true
		}
	}
	return "", false
}

// Handlers

func runSiteList(_ *cobra.Command, _ []string) error {
	cfg, err := requireSites()
	if err != nil || cfg == nil {
		return err
	}

	// Sort site IDs for consistent display order.
	ids := make([]string, 0, len(cfg.Sites))
	for id := range cfg.Sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println()
	ui.Banner("Connected Sites")
	ui.Divider()

	for _, id := range ids {
		site := cfg.Sites[id]

		marker := "  "
		if id == cfg.SelectedSiteID {
			marker = ui.BrandStyle.Render("→ ")
		}

		name := site.Name
		if name == "" {
			name = site.URL
		}

		synced := "never synced"
		if !site.LastSyncedAt.IsZero() {
			synced = "synced " + humanize.Time(site.LastSyncedAt)
		}

		fmt.Printf("%s %s %s\n", marker, ui.ValStyle.Render(name), ui.DimStyle.Render("("+synced+")"))
	}

	fmt.Println()
	return nil
}

func runSiteSwitch(_ *cobra.Command, args []string) error {
	cfg, err := requireSites()
	if err != nil || cfg == nil {
		return err
	}

	var selectedID string

	if len(args) > 0 {
		// Name provided — find it directly.
		id, ok := findSite(cfg, args[0])
		if !ok {
			return fmt.Errorf("site %q not found", args[0])
		}
		selectedID = id
	} else {
		// Build sorted option list for the interactive picker.
		options := make([]huh.Option[string], 0, len(cfg.Sites))
		for id, site := range cfg.Sites {
			label := site.Name
			if label == "" {
				label = site.URL
			}
			options = append(options, huh.NewOption(label, id))
		}
		sort.Slice(options, func(i, j int) bool { return options[i].Key < options[j].Key })

		if err := huh.NewSelect[string]().
			Title("Switch selected site").
			Options(options...).
			Value(&selectedID).
			Run(); err != nil {
			return nil // user cancelled
		}
	}

	if err := config.SetSelectedSiteID(selectedID); err != nil {
		return fmt.Errorf("failed to update selected site: %w", err)
	}

	ui.Success(fmt.Sprintf("Switched to site: %s", cfg.Sites[selectedID].Name))
	return nil
}

func runSiteRemove(_ *cobra.Command, args []string) error {
	cfg, err := requireSites()
	if err != nil || cfg == nil {
		return err
	}

	id, ok := findSite(cfg, args[0])
	if !ok {
		return fmt.Errorf("site %q not found", args[0])
	}
	site := cfg.Sites[id]

	var confirmed bool
	if err := huh.NewConfirm().
		Title(fmt.Sprintf("Remove %s and its saved credentials?", site.URL)).
		Value(&confirmed).
		Run(); err != nil || !confirmed {
		return nil // user cancelled or declined
	}

	_ = keychain.Delete(creds.NormalizeBaseSiteURL(site.URL))
	if err := config.RemoveSite(id); err != nil {
		return fmt.Errorf("failed to remove site: %w", err)
	}

	ui.Success(fmt.Sprintf("Removed %s.", site.URL))
	return nil
}

func runSiteSync(_ *cobra.Command, _ []string) error {
	cfg, err := requireSites()
	if err != nil || cfg == nil {
		return err
	}

	site, ok := cfg.Sites[cfg.SelectedSiteID]
	if !ok {
		return fmt.Errorf("no site selected — run 'sitelink site switch' first")
	}

	host := creds.NormalizeBaseSiteURL(site.URL)
	cred, err := keychain.Fetch(host)
	if err != nil {
		return fmt.Errorf("no saved credentials for %s — run 'sitelink login': %w", host, err)
	}

	if err := ui.Spinner(fmt.Sprintf("Syncing %s...", host), func() error {
		return syncService.SyncSite(context.Background(), cred.Username, cred.Password, site.XMLRPCEndpoint, nil)
	}); err != nil {
		ui.Error("Sync failed: " + err.Error())
		return nil
	}

	ui.Success(fmt.Sprintf("Synced %s.", host))
	return nil
}
