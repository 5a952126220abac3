package creds

import "testing"

// The OS keyring isn't available in CI, so these tests exercise the file
// fallback explicitly.
func TestKeychainFileFallbackRoundtrip(t *testing.T) {
	tmpDir := t.TempDir()
	oldBackend := useFileBackend
	oldHome := keyringHomeHook
	useFileBackend = true
	keyringHomeHook = func() (string, error) { return tmpDir, nil }
	defer func() {
		useFileBackend = oldBackend
		keyringHomeHook = oldHome
	}()

	kc := Keychain{}

	if !kc.Available() {
		t.Fatal("expected file-backed keychain to be available")
	}

	cred := SavedCredential{Username: "admin", Password: "s3cret"}
	if err := kc.Store("example.com", cred); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := kc.Fetch("example.com")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got != cred {
		t.Errorf("Fetch = %+v, want %+v", got, cred)
	}

	if _, err := kc.Fetch("other.com"); err == nil {
		t.Error("expected Fetch for unknown host to fail")
	}

	if err := kc.Delete("example.com"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kc.Fetch("example.com"); err == nil {
		t.Error("expected Fetch after Delete to fail")
	}

	// Deleting a missing entry is not an error.
	if err := kc.Delete("example.com"); err != nil {
		t.Errorf("Delete of missing entry failed: %v", err)
	}
}
