package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/creds"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run a read-only MCP server over stdio",
	Long: `Run a Model Context Protocol server over stdio.

	Exposes the connected-site cache to AI assistants as read-only tools.
	Credentials are never exposed: the tools return site metadata only.`,
	RunE: runMCP,
}

// siteSummary is the credential-free view of a cache entry returned by the
// MCP tools.
type siteSummary struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Username     string `json:"username"`
	LastSyncedAt string `json:"last_synced_at,omitempty"`
	Selected     bool   `json:"selected"`
}

func runMCP(cmd *cobra.Command, args []string) error {
	s := server.NewMCPServer("sitelink", Version, server.WithToolCapabilities(false))

	s.AddTool(
		mcp.NewTool("list_sites",
			mcp.WithDescription("List the connected self-hosted sites (metadata only, no credentials)"),
		),
		handleListSites,
	)

	s.AddTool(
		mcp.NewTool("site_status",
			mcp.WithDescription("Show status for one connected site"),
			mcp.WithString("site",
				mcp.Required(),
				mcp.Description("Site name or host"),
			),
		),
		handleSiteStatus,
	)

	return server.ServeStdio(s)
}

func handleListSites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return mcp.NewToolResultError("failed to load site cache: " + err.Error()), nil
	}

	summaries := make([]siteSummary, 0, len(cfg.Sites))
	for id, site := range cfg.Sites {
		summaries = append(summaries, summarize(site, id == cfg.SelectedSiteID))
	}

	out, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode sites: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func handleSiteStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("site")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return mcp.NewToolResultError("failed to load site cache: " + err.Error()), nil
	}

	id, ok := findSite(cfg, name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("site %q not found", name)), nil
	}

	out, err := json.MarshalIndent(summarize(cfg.Sites[id], id == cfg.SelectedSiteID), "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode site: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func summarize(site config.SiteCacheEntry, selected bool) siteSummary {
	s := siteSummary{
		Name:     site.Name,
		URL:      creds.NormalizeBaseSiteURL(site.URL),
		Username: site.Username,
		Selected: selected,
	}
	if !site.LastSyncedAt.IsZero() {
		s.LastSyncedAt = site.LastSyncedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return s
}
