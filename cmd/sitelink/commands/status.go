package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current session and site info",
	Long: `Show the current Sitelink session status.

Displays:
  - Whether you're signed in
  - The selected site and its user
  - When the site was last synced`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println()
		ui.Banner("Sitelink Status")
		ui.Divider()

		if !config.IsAuthenticated() {
			ui.StatusRowDim("Signed in:", "No")
			fmt.Println()
			ui.Info("  Run 'sitelink login' to sign in to a site")
			fmt.Println()
			return nil
		}

		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ui.StatusRow("Signed in:", "Yes")
		ui.StatusRow("Sites:", fmt.Sprintf("%d connected", len(cfg.Sites)))

		if site, ok := cfg.Sites[cfg.SelectedSiteID]; ok {
			name := site.Name
			if name == "" {
				name = site.URL
			}
			ui.StatusRow("Selected:", name)
			ui.StatusRow("User:", site.Username)
			if !site.LastSyncedAt.IsZero() {
				ui.StatusRow("Last sync:", humanize.Time(site.LastSyncedAt))
			} else {
				ui.StatusRowDim("Last sync:", "never")
			}
		} else {
			ui.StatusRowDim("Selected:", "—")
		}

		if config.GetAccessToken() != "" {
			ui.StatusRow("Hosted token:", "present")
		}

		fmt.Println()
		return nil
	},
}
