// Package api provides the HTTP client for the hosted-account bridge service.
//
// Self-hosted sign-ins talk XML-RPC directly to the user's site (see
// pkg/xmlrpc); this client only serves the hosted-account flows: login,
// second-factor verification, token refresh, and logout.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultBaseURL is the hosted-account bridge endpoint
const DefaultBaseURL = "https://api.sitelink.dev/v1"

// endpointMap defines all API routes
var endpointMap = map[string]map[string]string{
	"auth": {
		"login":      "auth/login/",
		"two_factor": "auth/two-factor/",
		"refresh":    "auth/refresh/",
		"logout":     "auth/logout/",
	},
}

// publicEndpoints are endpoints that don't require an auth token
var publicEndpoints = map[string]bool{
	"auth.login":      true,
	"auth.two_factor": true,
	"auth.refresh":    true,
}

// Client handles all HTTP communication with the bridge service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// getToken is a function that returns the current access token.
	// Injected so the API client doesn't depend on the config package directly.
	getToken func() string
}

// NewClient creates a new API client with the default base URL.
func NewClient(tokenFunc func() string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{},
		getToken:   tokenFunc,
	}
}

// Call makes an API request to the specified endpoint.
//
// endpointKey uses dot notation like "auth.login".
// method is the HTTP method (GET, POST, PUT, DELETE).
// data is the request body (will be JSON-encoded), can be nil.
func (c *Client) Call(endpointKey, method string, data interface{}) (*http.Response, error) {
	path, err := c.resolveEndpoint(endpointKey)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", c.BaseURL, path)

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(strings.ToUpper(method), url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if !publicEndpoints[endpointKey] && c.getToken != nil {
		token := c.getToken()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.HTTPClient.Do(req)
}

// resolveEndpoint converts "category.action" into a URL path
func (c *Client) resolveEndpoint(key string) (string, error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid endpoint key %q: must be 'category.action'", key)
	}

	category, action := parts[0], parts[1]

	categoryMap, ok := endpointMap[category]
	if !ok {
		return "", fmt.Errorf("unknown endpoint category: %q", category)
	}

	path, ok := categoryMap[action]
	if !ok {
		return "", fmt.Errorf("unknown endpoint action: %q in category %q", action, category)
	}

	return path, nil
}
