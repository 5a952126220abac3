package commands

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/creds"
	"github.com/sitelinkhq/sitelink/pkg/ui"
)

var forceLogout bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored credentials",
	Long: `Sign out of all connected sites.

	This will:
	1. Remove saved site passwords from the OS keychain
	2. Clear stored tokens
	3. Clear the synced-site cache`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.IsAuthenticated() {
			ui.Info("You're not signed in.")
			return nil
		}

		// Confirm unless --force
		if !forceLogout {
			var confirm bool
			err := huh.NewConfirm().
				Title("Sign out of all sites?").
				Affirmative("Yes").
				Negative("No").
				Value(&confirm).
				Run()
			if err != nil || !confirm {
				ui.Info("Cancelled.")
				return nil
			}
		}

		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		for _, site := range cfg.Sites {
			host := creds.NormalizeBaseSiteURL(site.URL)
			_ = keychain.Delete(host)
		}

		if err := config.SaveTokens(&config.TokenConfig{}); err != nil {
			return fmt.Errorf("failed to clear tokens: %w", err)
		}
		if err := config.SaveGlobalConfig(&config.GlobalConfig{}); err != nil {
			return fmt.Errorf("failed to clear site cache: %w", err)
		}

		fmt.Println()
		ui.Success("Signed out.")
		ui.Info("Run 'sitelink login' to sign in again.")
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVarP(&forceLogout, "force", "f", false, "Skip confirmation prompt")
}
