// Package sitesync persists site metadata after a successful sign-in.
//
// It fetches the blog list from the site's XML-RPC endpoint and stores each
// blog in the local site cache, with the password going to the OS keychain.
package sitesync

import (
	"context"
	"fmt"
	"time"

	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/creds"
	"github.com/sitelinkhq/sitelink/pkg/xmlrpc"
)

// Syncer is the contract the login screens consume. The form treats sync
// completion as completion regardless of error; the command layer is the one
// that reports sync errors.
type Syncer interface {
	SyncSite(ctx context.Context, username, password, endpoint string, options map[string]interface{}) error
}

// CredentialStore is where verified passwords end up. creds.Keychain
// satisfies it.
type CredentialStore interface {
	Store(host string, cred creds.SavedCredential) error
}

// Service is the production Syncer.
type Service struct {
	Creds CredentialStore

	// newRPC builds the XML-RPC client for an endpoint; a test seam.
	newRPC func(endpoint string) *xmlrpc.Client

	// now is a test seam for the LastSyncedAt stamp.
	now func() time.Time
}

// NewService creates the production site sync service.
func NewService() *Service {
	return &Service{
		Creds:  creds.Keychain{},
		newRPC: xmlrpc.NewClient,
		now:    time.Now,
	}
}

// SyncSite fetches the blog list with the given (already verified)
// credentials and persists every blog into the site cache. The credentials
// are saved to the keychain keyed by the site host.
func (s *Service) SyncSite(ctx context.Context, username, password, endpoint string, options map[string]interface{}) error {
	rpc := s.newRPC(endpoint)

	result, err := rpc.Call(ctx, "wp.getUsersBlogs", username, password)
	if err != nil {
		return fmt.Errorf("site sync failed: %w", err)
	}

	blogs, ok := result.([]interface{})
	if !ok || len(blogs) == 0 {
		return fmt.Errorf("site sync: no blogs returned for %s", username)
	}

	for _, b := range blogs {
		blog, ok := b.(map[string]interface{})
		if !ok {
			continue
		}

		id := stringField(blog, "blogid")
		url := stringField(blog, "url")
		if id == "" {
			id = creds.NormalizeBaseSiteURL(url)
		}

		blogEndpoint := stringField(blog, "xmlrpc")
		if blogEndpoint == "" {
			blogEndpoint = endpoint
		}

		entry := config.SiteCacheEntry{
			Name:           stringField(blog, "blogName"),
			URL:            url,
			XMLRPCEndpoint: blogEndpoint,
			Username:       username,
			LastSyncedAt:   s.now(),
		}
		if err := config.UpsertSite(id, entry); err != nil {
			return fmt.Errorf("site sync: failed to cache %s: %w", id, err)
		}

		host := creds.NormalizeBaseSiteURL(url)
		if host == "" {
			host = creds.NormalizeBaseSiteURL(endpoint)
		}
		if err := s.Creds.Store(host, creds.SavedCredential{Username: username, Password: password}); err != nil {
			// Keychain trouble shouldn't lose the sync; the cache entry
			// is already written.
			continue
		}
	}

	return nil
}

// stringField reads a string member out of a decoded XML-RPC struct,
// tolerating numeric blog IDs.
func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}
