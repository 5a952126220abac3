package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sitelinkhq/sitelink/pkg/analytics"
	"github.com/sitelinkhq/sitelink/pkg/auth"
	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/creds"
	"github.com/sitelinkhq/sitelink/pkg/tui"
	"github.com/sitelinkhq/sitelink/pkg/ui"
)

var (
	loginUsername string
	loginSite     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a self-hosted site",
	Long: `Sign in to a self-hosted site.

	This will:
	1. Prompt for your username, password, and site address
	2. Verify the credentials against the site
	3. Complete a two-factor challenge if the site requires one
	4. Sync the site's metadata into the local cache
	5. Store the credentials in your OS keychain

	With --username and --site the form is skipped and the password is
	read from the terminal.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Site username")
	loginCmd.Flags().StringVarP(&loginSite, "site", "s", "", "Site address (bare host or URL)")
}

func loginDeps() tui.Deps {
	return tui.Deps{
		Auth:     authService,
		Sync:     syncService,
		Autofill: keychain,
		Track:    analytics.Track,
		StoreToken: func(username, token string) error {
			return config.StoreTokens(username, token, "")
		},
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to prepare config directory: %w", err)
	}

	record := &creds.Record{
		Username:    strings.TrimSpace(loginUsername),
		SiteAddress: creds.NormalizeBaseSiteURL(loginSite),
	}

	if record.Username != "" && record.SiteAddress != "" {
		return runFlagLogin(record)
	}

	p := tea.NewProgram(tui.NewForm(record, loginDeps()))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("login screen failed: %w", err)
	}

	if !tui.WasCompleted(final) {
		ui.Info("Login cancelled.")
		return nil
	}
	if syncErr := tui.SyncError(final); syncErr != nil {
		ui.Warning("Signed in, but the site sync failed: " + syncErr.Error())
		return nil
	}

	fmt.Println()
	ui.Success("Signed in and synced!")
	return nil
}

// runFlagLogin is the non-interactive path: password from the terminal,
// validation through the same gate as the form, outcomes handled inline.
func runFlagLogin(record *creds.Record) error {
	fmt.Printf("Password for %s@%s: ", record.Username, record.SiteAddress)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	record.Password = strings.TrimSpace(string(raw))

	if !creds.AllFieldsPopulated(record) {
		ui.Error("Please fill out all the fields.")
		return nil
	}
	if !creds.SiteAddressLooksValid(record) {
		ui.Error("The site address appears to be mistyped.")
		return nil
	}

	var outcome auth.Outcome
	if err := ui.Spinner("Signing in...", func() error {
		outcome = authService.SignIn(context.Background(), record)
		return nil
	}); err != nil {
		return err
	}

	if outcome.Kind == auth.OutcomeNeedsSecondFactor {
		analytics.Track(analytics.EventTwoFactorRequested)
		record.AwaitingSecondFactor = true

		var code string
		if err := huh.NewInput().
			Title("Verification code").
			Description("Enter the code from your authenticator app").
			Value(&code).
			Run(); err != nil {
			ui.Info("Login cancelled.")
			return nil
		}

		if err := ui.Spinner("Verifying...", func() error {
			outcome = authService.VerifySecondFactor(context.Background(), record, strings.TrimSpace(code))
			return nil
		}); err != nil {
			return err
		}
	}

	switch outcome.Kind {
	case auth.OutcomeFailed:
		analytics.Track(analytics.EventLoginFailed)
		ui.Error("Login failed: " + outcome.Err.Error())
		return nil

	case auth.OutcomeDirect:
		if err := config.StoreTokens(outcome.Username, outcome.Token, ""); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

	case auth.OutcomeSelfHosted:
		if err := ui.Spinner("Syncing site...", func() error {
			return syncService.SyncSite(context.Background(),
				outcome.Username, outcome.Password, outcome.XMLRPCEndpoint, outcome.Options)
		}); err != nil {
			ui.Warning("Signed in, but the site sync failed: " + err.Error())
			return nil
		}

	case auth.OutcomeNeedsSecondFactor:
		ui.Error("That verification code was not accepted.")
		return nil
	}

	analytics.Track(analytics.EventLoginSucceeded)
	fmt.Println()
	ui.Success("Signed in and synced!")
	return nil
}
