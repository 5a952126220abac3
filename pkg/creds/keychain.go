// Keychain-backed storage for saved site credentials.
//
// On macOS this uses Keychain, on Windows the Credential Manager. On
// Linux/WSL (where the D-Bus Secret Service is often unavailable) it falls
// back to file-based storage in ~/.sitelink/keyring.json.
//
// Service name: "Sitelink"
// Key naming: "{host}" → JSON {username, password}
package creds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	gokeyring "github.com/zalando/go-keyring"
)

const serviceName = "Sitelink"

// useFileBackend is true when the OS keyring is unavailable (WSL, headless
// Linux, etc.)
var useFileBackend bool

func init() {
	// On Linux, test whether the keyring actually works. macOS and Windows
	// have reliable keyring support.
	if runtime.GOOS == "linux" {
		testKey := "__sitelink_keyring_test__"
		if err := gokeyring.Set(serviceName, testKey, "test"); err != nil {
			useFileBackend = true
		} else {
			_ = gokeyring.Delete(serviceName, testKey)
		}
	}
}

// SavedCredential is one stored username/password pair for a site host.
type SavedCredential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Keychain stores and fetches site credentials. The zero value uses the OS
// keyring (or the file fallback selected at startup).
type Keychain struct{}

// Available reports whether a credential store can be used at all.
func (Keychain) Available() bool {
	if !useFileBackend {
		return true
	}
	_, err := keyringFilePath()
	return err == nil
}

// Store saves the credential pair for a host.
func (Keychain) Store(host string, cred SavedCredential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if useFileBackend {
		return fileSet(host, string(data))
	}
	if err := gokeyring.Set(serviceName, host, string(data)); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Fetch retrieves the saved credential for a host. Returns an error when no
// credential is stored.
func (Keychain) Fetch(host string) (SavedCredential, error) {
	var raw string
	var err error

	if useFileBackend {
		raw, err = fileGet(host)
	} else {
		raw, err = gokeyring.Get(serviceName, host)
	}
	if err != nil {
		return SavedCredential{}, fmt.Errorf("no saved credential for %s: %w", host, err)
	}

	var cred SavedCredential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return SavedCredential{}, fmt.Errorf("corrupt saved credential for %s: %w", host, err)
	}
	return cred, nil
}

// Delete removes the saved credential for a host (used during logout and
// site removal). Missing entries are not an error.
func (Keychain) Delete(host string) error {
	if useFileBackend {
		return fileDelete(host)
	}
	_ = gokeyring.Delete(serviceName, host)
	return nil
}

// --- File-based fallback for Linux/WSL ---

// keyringHomeHook is overridden in tests to redirect the fallback file.
var keyringHomeHook = os.UserHomeDir

func keyringFilePath() (string, error) {
	home, err := keyringHomeHook()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".sitelink")
	_ = os.MkdirAll(dir, 0700)
	return filepath.Join(dir, "keyring.json"), nil
}

func loadKeyringFile() (map[string]string, error) {
	path, err := keyringFilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return make(map[string]string), nil
	}
	return entries, nil
}

func saveKeyringFile(entries map[string]string) error {
	path, err := keyringFilePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func fileSet(host, raw string) error {
	entries, err := loadKeyringFile()
	if err != nil {
		return fmt.Errorf("failed to load keyring file: %w", err)
	}
	entries[host] = raw
	if err := saveKeyringFile(entries); err != nil {
		return fmt.Errorf("failed to save keyring file: %w", err)
	}
	return nil
}

func fileGet(host string) (string, error) {
	entries, err := loadKeyringFile()
	if err != nil {
		return "", err
	}
	raw, ok := entries[host]
	if !ok {
		return "", fmt.Errorf("no entry for %s", host)
	}
	return raw, nil
}

func fileDelete(host string) error {
	entries, err := loadKeyringFile()
	if err != nil {
		return nil
	}
	delete(entries, host)
	return saveKeyringFile(entries)
}
