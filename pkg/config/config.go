// Package config manages all configuration files for Sitelink.
//
// File layout:
//
//	~/.sitelink/
//	├── config.json     # Synced-site cache, selected site
//	├── token.json      # Bearer token for hosted-account logins
//	└── events.log      # Local analytics event log (see pkg/analytics)
//
// Note: passwords are stored in the OS keychain (see pkg/creds), not in files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// GlobalConfig represents ~/.sitelink/config.json
type GlobalConfig struct {
	SelectedSiteID string                    `json:"selected_site_id,omitempty"`
	Sites          map[string]SiteCacheEntry `json:"sites,omitempty"`
}

// SiteCacheEntry is one synced site's metadata.
type SiteCacheEntry struct {
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	XMLRPCEndpoint string    `json:"xmlrpc_endpoint"`
	Username       string    `json:"username"`
	LastSyncedAt   time.Time `json:"last_synced_at"`
}

// TokenConfig represents ~/.sitelink/token.json
type TokenConfig struct {
	AccessToken string `json:"access_token,omitempty"`
	Username    string `json:"username,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// Paths returns the standard config file paths
type Paths struct {
	GlobalDir  string // ~/.sitelink/
	ConfigFile string // ~/.sitelink/config.json
	TokenFile  string // ~/.sitelink/token.json
	EventsFile string // ~/.sitelink/events.log
}

// HomeDirHook is used to determine the user's home directory.
// It can be overridden in tests to redirect config files.
var HomeDirHook = os.UserHomeDir

// GetPaths returns the standard config paths based on the user's home directory.
func GetPaths() (*Paths, error) {
	home, err := HomeDirHook()
	if err != nil {
		return nil, fmt.Errorf("could not determine home directory: %w", err)
	}

	globalDir := filepath.Join(home, ".sitelink")
	return &Paths{
		GlobalDir:  globalDir,
		ConfigFile: filepath.Join(globalDir, "config.json"),
		TokenFile:  filepath.Join(globalDir, "token.json"),
		EventsFile: filepath.Join(globalDir, "events.log"),
	}, nil
}

// EnsureGlobalDir creates ~/.sitelink/ and the default config files.
func EnsureGlobalDir() error {
	paths, err := GetPaths()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(paths.GlobalDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(paths.ConfigFile); os.IsNotExist(err) {
		if err := writeJSON(paths.ConfigFile, &GlobalConfig{}, 0644); err != nil {
			return err
		}
	}

	// token.json gets restricted permissions.
	if _, err := os.Stat(paths.TokenFile); os.IsNotExist(err) {
		if err := writeJSON(paths.TokenFile, &TokenConfig{}, 0600); err != nil {
			return err
		}
	}

	return nil
}

// LoadGlobalConfig reads ~/.sitelink/config.json
func LoadGlobalConfig() (*GlobalConfig, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, err
	}
	var config GlobalConfig
	if err := readJSON(paths.ConfigFile, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveGlobalConfig writes ~/.sitelink/config.json
func SaveGlobalConfig(config *GlobalConfig) error {
	paths, err := GetPaths()
	if err != nil {
		return err
	}
	return writeJSON(paths.ConfigFile, config, 0644)
}

// LoadTokens reads ~/.sitelink/token.json
func LoadTokens() (*TokenConfig, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, err
	}
	var tokens TokenConfig
	if err := readJSON(paths.TokenFile, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// SaveTokens writes ~/.sitelink/token.json
func SaveTokens(tokens *TokenConfig) error {
	paths, err := GetPaths()
	if err != nil {
		return err
	}
	return writeJSON(paths.TokenFile, tokens, 0600)
}

// --- Helper functions ---

func writeJSON(path string, data interface{}, perm os.FileMode) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, jsonData, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Return zero-value target if file doesn't exist
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// --- Convenience functions ---

// GetSelectedSiteID returns the currently selected site, or empty string.
func GetSelectedSiteID() string {
	config, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return config.SelectedSiteID
}

// SetSelectedSiteID marks a site as the active one for status/sync commands.
func SetSelectedSiteID(id string) error {
	config, err := LoadGlobalConfig()
	if err != nil {
		config = &GlobalConfig{}
	}
	config.SelectedSiteID = id
	return SaveGlobalConfig(config)
}

// UpsertSite stores or refreshes one site cache entry. When no site is
// selected yet, the new site becomes the selection.
func UpsertSite(id string, entry SiteCacheEntry) error {
	config, err := LoadGlobalConfig()
	if err != nil {
		config = &GlobalConfig{}
	}
	if config.Sites == nil {
		config.Sites = make(map[string]SiteCacheEntry)
	}
	config.Sites[id] = entry
	if config.SelectedSiteID == "" {
		config.SelectedSiteID = id
	}
	return SaveGlobalConfig(config)
}

// RemoveSite drops a site from the cache, clearing the selection if it
// pointed at the removed site.
func RemoveSite(id string) error {
	config, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	delete(config.Sites, id)
	if config.SelectedSiteID == id {
		config.SelectedSiteID = ""
	}
	return SaveGlobalConfig(config)
}

// GetAccessToken returns the current hosted-account token, or empty string.
func GetAccessToken() string {
	tokens, err := LoadTokens()
	if err != nil {
		return ""
	}
	return tokens.AccessToken
}

// StoreTokens saves hosted-account token material.
func StoreTokens(username, accessToken, expiresAt string) error {
	return SaveTokens(&TokenConfig{
		AccessToken: accessToken,
		Username:    username,
		ExpiresAt:   expiresAt,
	})
}

// IsAuthenticated reports whether at least one site has been signed in to,
// or a hosted-account token is present.
func IsAuthenticated() bool {
	if GetAccessToken() != "" {
		return true
	}
	config, err := LoadGlobalConfig()
	if err != nil {
		return false
	}
	return len(config.Sites) > 0
}
