// Package creds defines the credential record that moves through the login
// flow, the pure validators that gate submission, and the keychain-backed
// saved-credential store.
package creds

import (
	"net/url"
	"strings"
)

// Record holds the credentials being entered for a single site.
//
// A Record is exclusively owned by whichever screen is currently editing it.
// When the flow hands off to the second-factor screen, the record moves with
// it; the previous owner must not touch it again.
type Record struct {
	Username    string
	Password    string
	SiteAddress string // bare host, already normalized via NormalizeBaseSiteURL

	// IsHostedAccount marks a centrally hosted account. The self-hosted
	// login screen forces this to false on entry.
	IsHostedAccount bool

	// AwaitingSecondFactor is set once the service reports a second-factor
	// challenge for this record.
	AwaitingSecondFactor bool
}

// AllFieldsPopulated reports whether username, password, and site address are
// all non-empty.
func AllFieldsPopulated(r *Record) bool {
	return r.Username != "" && r.Password != "" && r.SiteAddress != ""
}

// SiteAddressLooksValid reports whether the record's (normalized) site address
// parses as a syntactically valid host. It performs no network I/O.
func SiteAddressLooksValid(r *Record) bool {
	addr := NormalizeBaseSiteURL(r.SiteAddress)
	if addr == "" || strings.ContainsAny(addr, " \t") {
		return false
	}
	u, err := url.Parse("https://" + addr)
	if err != nil {
		return false
	}
	return u.Hostname() != ""
}

// NormalizeBaseSiteURL reduces a user-typed site address to a bare host:
// scheme stripped, path and query dropped, surrounding whitespace trimmed.
// Normalizing an already-normalized address yields the same result.
func NormalizeBaseSiteURL(raw string) string {
	s := strings.TrimSpace(raw)

	lower := strings.ToLower(s)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			s = s[len(scheme):]
			break
		}
	}

	// Drop everything from the first path separator on.
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	return strings.TrimSpace(s)
}

// LostPasswordURL returns the password-reset page for a normalized host.
func LostPasswordURL(host string) string {
	return "https://" + host + "/wp-login.php?action=lostpassword"
}
