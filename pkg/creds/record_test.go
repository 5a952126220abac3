package creds

import "testing"

func TestNormalizeBaseSiteURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/wp-admin/", "example.com"},
		{"http://example.com", "example.com"},
		{"example.com", "example.com"},
		{"  example.com  ", "example.com"},
		{"HTTPS://Example.com/path?q=1", "Example.com"},
		{"example.com:8080/blog", "example.com:8080"},
		{"https://example.com#frag", "example.com"},
		{"", ""},
	}

	for _, c := range cases {
		got := NormalizeBaseSiteURL(c.in)
		if got != c.want {
			t.Errorf("NormalizeBaseSiteURL(%q) = %q, want %q", c.in, got, c.want)
		}
		// Normalizing twice must yield the same result.
		if again := NormalizeBaseSiteURL(got); again != got {
			t.Errorf("NormalizeBaseSiteURL not idempotent: %q → %q → %q", c.in, got, again)
		}
	}
}

func TestAllFieldsPopulated(t *testing.T) {
	full := &Record{Username: "a", Password: "b", SiteAddress: "example.com"}
	if !AllFieldsPopulated(full) {
		t.Error("expected fully populated record to pass")
	}

	partials := []*Record{
		{Password: "b", SiteAddress: "example.com"},
		{Username: "a", SiteAddress: "example.com"},
		{Username: "a", Password: "b"},
		{},
	}
	for i, r := range partials {
		if AllFieldsPopulated(r) {
			t.Errorf("case %d: expected partial record to fail", i)
		}
	}
}

func TestSiteAddressLooksValid(t *testing.T) {
	valid := []string{"example.com", "sub.example.co.uk", "example.com:8080", "https://example.com/wp-admin/"}
	for _, addr := range valid {
		if !SiteAddressLooksValid(&Record{SiteAddress: addr}) {
			t.Errorf("expected %q to be valid", addr)
		}
	}

	invalid := []string{"", "not a url", "   ", "bad host with spaces"}
	for _, addr := range invalid {
		if SiteAddressLooksValid(&Record{SiteAddress: addr}) {
			t.Errorf("expected %q to be invalid", addr)
		}
	}
}

func TestLostPasswordURL(t *testing.T) {
	got := LostPasswordURL("example.com")
	want := "https://example.com/wp-login.php?action=lostpassword"
	if got != want {
		t.Errorf("LostPasswordURL = %q, want %q", got, want)
	}
}
