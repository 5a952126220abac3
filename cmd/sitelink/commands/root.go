package commands

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sitelinkhq/sitelink/pkg/api"
	"github.com/sitelinkhq/sitelink/pkg/auth"
	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/creds"
	"github.com/sitelinkhq/sitelink/pkg/sitesync"
	"github.com/sitelinkhq/sitelink/pkg/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	authService *auth.Service
	syncService *sitesync.Service
	keychain    creds.Keychain
)

// rootCmd is the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitelink",
	Short: "Sign in to your self-hosted sites from the terminal",
	Long: lipgloss.JoinVertical(lipgloss.Left,
		"",
		ui.BrandStyle.Render("Sitelink"),
		ui.DimStyle.Render("   Connect self-hosted sites and keep their credentials in your keychain"),
		"",
		ui.LabelStyle.Render("   Verify credentials against your site, complete two-factor"),
		ui.LabelStyle.Render("   challenges, and sync site metadata into a local cache."),
		"",
		ui.DimStyle.Render("   Get started:"),
		"   "+ui.BrandStyle.Render("sitelink login")+"        "+ui.LabelStyle.Render("Sign in to a site"),
		"   "+ui.BrandStyle.Render("sitelink site list")+"    "+ui.LabelStyle.Render("Show connected sites"),
		"   "+ui.BrandStyle.Render("sitelink status")+"       "+ui.LabelStyle.Render("Show current session info"),
		"",
	),
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Create the API client with a token provider function.
	apiClient := api.NewClient(func() string {
		return config.GetAccessToken()
	})

	// Create the shared services
	authService = auth.NewService(apiClient)
	syncService = sitesync.NewService()

	// Register all subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(siteCmd)
	rootCmd.AddCommand(mcpCmd)
}
