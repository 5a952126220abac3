// Package analytics is a fire-and-forget local event sink.
//
// Events append to ~/.sitelink/events.log as JSON lines. Nothing leaves the
// machine; failures are silently dropped so no flow ever blocks on tracking.
package analytics

import (
	"encoding/json"
	"os"
	"time"

	"github.com/sitelinkhq/sitelink/pkg/config"
)

// Known event identifiers.
const (
	EventTwoFactorRequested = "two_factor_requested"
	EventLoginSucceeded     = "login_succeeded"
	EventLoginFailed        = "login_failed"
)

type event struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

// pathHook resolves the events file; overridden in tests.
var pathHook = defaultPath

// Track records a single event. Fire-and-forget: errors are swallowed.
func Track(id string) {
	path, err := pathHook()
	if err != nil {
		return
	}

	line, err := json.Marshal(event{Event: id, At: time.Now().UTC()})
	if err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
}

func defaultPath() (string, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return "", err
	}
	return paths.EventsFile, nil
}
