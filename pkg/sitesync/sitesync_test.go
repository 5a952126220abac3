package sitesync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sitelinkhq/sitelink/pkg/config"
	"github.com/sitelinkhq/sitelink/pkg/creds"
)

const blogsResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
  <value><struct>
    <member><name>blogid</name><value><string>42</string></value></member>
    <member><name>blogName</name><value><string>My Site</string></value></member>
    <member><name>url</name><value><string>https://example.com/</string></value></member>
    <member><name>xmlrpc</name><value><string>https://example.com/xmlrpc.php</string></value></member>
  </struct></value>
</data></array></value></param></params></methodResponse>`

type fakeStore struct {
	stored map[string]creds.SavedCredential
}

func (f *fakeStore) Store(host string, cred creds.SavedCredential) error {
	if f.stored == nil {
		f.stored = make(map[string]creds.SavedCredential)
	}
	f.stored[host] = cred
	return nil
}

func TestSyncSitePersistsCacheAndCredentials(t *testing.T) {
	tmpDir := t.TempDir()
	oldHome := config.HomeDirHook
	config.HomeDirHook = func() (string, error) { return tmpDir, nil }
	defer func() { config.HomeDirHook = oldHome }()

	if err := config.EnsureGlobalDir(); err != nil {
		t.Fatalf("EnsureGlobalDir failed: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(blogsResponse))
	}))
	defer server.Close()

	store := &fakeStore{}
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc := NewService()
	svc.Creds = store
	svc.now = func() time.Time { return now }

	err := svc.SyncSite(context.Background(), "admin", "secret", server.URL, nil)
	if err != nil {
		t.Fatalf("SyncSite failed: %v", err)
	}

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig failed: %v", err)
	}
	entry, ok := cfg.Sites["42"]
	if !ok {
		t.Fatalf("site 42 not cached: %#v", cfg.Sites)
	}
	if entry.Name != "My Site" || entry.Username != "admin" {
		t.Errorf("cache entry = %+v", entry)
	}
	if entry.XMLRPCEndpoint != "https://example.com/xmlrpc.php" {
		t.Errorf("endpoint = %q", entry.XMLRPCEndpoint)
	}
	if !entry.LastSyncedAt.Equal(now) {
		t.Errorf("LastSyncedAt = %v, want %v", entry.LastSyncedAt, now)
	}

	// First synced site becomes the selection.
	if cfg.SelectedSiteID != "42" {
		t.Errorf("SelectedSiteID = %q, want %q", cfg.SelectedSiteID, "42")
	}

	cred, ok := store.stored["example.com"]
	if !ok {
		t.Fatalf("credentials not stored: %#v", store.stored)
	}
	if cred.Username != "admin" || cred.Password != "secret" {
		t.Errorf("stored credential = %+v", cred)
	}
}

func TestSyncSiteFailsOnEmptyBlogList(t *testing.T) {
	tmpDir := t.TempDir()
	oldHome := config.HomeDirHook
	config.HomeDirHook = func() (string, error) { return tmpDir, nil }
	defer func() { config.HomeDirHook = oldHome }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><methodResponse><params><param><value><array><data></data></array></value></param></params></methodResponse>`))
	}))
	defer server.Close()

	svc := NewService()
	svc.Creds = &fakeStore{}

	if err := svc.SyncSite(context.Background(), "admin", "secret", server.URL, nil); err == nil {
		t.Fatal("expected an error for an empty blog list")
	}
}
