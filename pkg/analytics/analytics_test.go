package analytics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTrackAppendsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	oldHook := pathHook
	pathHook = func() (string, error) { return path, nil }
	defer func() { pathHook = oldHook }()

	Track(EventTwoFactorRequested)
	Track(EventLoginSucceeded)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("events file not written: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 event lines, got %d", len(lines))
	}

	var first event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("event line is not valid JSON: %v", err)
	}
	if first.Event != EventTwoFactorRequested {
		t.Errorf("first event = %q, want %q", first.Event, EventTwoFactorRequested)
	}
	if first.At.IsZero() {
		t.Error("event timestamp missing")
	}
}

func TestTrackSwallowsPathErrors(t *testing.T) {
	oldHook := pathHook
	pathHook = func() (string, error) { return "", os.ErrPermission }
	defer func() { pathHook = oldHook }()

	// Must not panic or block.
	Track(EventLoginFailed)
}
