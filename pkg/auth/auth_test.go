package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sitelinkhq/sitelink/pkg/api"
	"github.com/sitelinkhq/sitelink/pkg/creds"
)

const blogsResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
  <value><struct>
    <member><name>blogid</name><value><string>1</string></value></member>
    <member><name>blogName</name><value><string>My Site</string></value></member>
    <member><name>url</name><value><string>https://example.com/</string></value></member>
    <member><name>xmlrpc</name><value><string>https://example.com/xmlrpc.php</string></value></member>
  </struct></value>
</data></array></value></param></params></methodResponse>`

func faultResponse(code int, msg string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<methodResponse><fault><value><struct>
  <member><name>faultCode</name><value><int>%d</int></value></member>
  <member><name>faultString</name><value><string>%s</string></value></member>
</struct></value></fault></methodResponse>`, code, msg)
}

// newTestService points the self-hosted path at a local XML-RPC server.
func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewService(api.NewClient(func() string { return "" }))
	svc.EndpointFor = func(host string) string { return server.URL }
	return svc, server
}

func selfHostedRecord() *creds.Record {
	return &creds.Record{Username: "admin", Password: "secret", SiteAddress: "example.com"}
}

func TestSignInSelfHostedSuccess(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(blogsResponse))
	})

	out := svc.SignIn(context.Background(), selfHostedRecord())
	if out.Kind != OutcomeSelfHosted {
		t.Fatalf("Kind = %v, want OutcomeSelfHosted (err: %v)", out.Kind, out.Err)
	}
	if out.Username != "admin" || out.Password != "secret" {
		t.Errorf("credentials not carried through: %+v", out)
	}
	// The endpoint reported by the site wins over the probed one.
	if out.XMLRPCEndpoint != "https://example.com/xmlrpc.php" {
		t.Errorf("XMLRPCEndpoint = %q", out.XMLRPCEndpoint)
	}
	if out.Options["blogName"] != "My Site" {
		t.Errorf("Options = %#v", out.Options)
	}
}

func TestSignInSelfHostedBadCredentials(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(faultResponse(403, "Incorrect username or password.")))
	})

	out := svc.SignIn(context.Background(), selfHostedRecord())
	if out.Kind != OutcomeFailed {
		t.Fatalf("Kind = %v, want OutcomeFailed", out.Kind)
	}
	if !errors.Is(out.Err, ErrInvalidCredentials) {
		t.Errorf("Err = %v, want ErrInvalidCredentials", out.Err)
	}
}

func TestSignInSelfHostedTwoFactorFault(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(faultResponse(425, "Please enter your verification code.")))
	})

	out := svc.SignIn(context.Background(), selfHostedRecord())
	if out.Kind != OutcomeNeedsSecondFactor {
		t.Fatalf("Kind = %v, want OutcomeNeedsSecondFactor", out.Kind)
	}
}

func TestVerifySecondFactorAppendsCode(t *testing.T) {
	var gotBody string
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(blogsResponse))
	})

	out := svc.VerifySecondFactor(context.Background(), selfHostedRecord(), "123456")
	if out.Kind != OutcomeSelfHosted {
		t.Fatalf("Kind = %v, want OutcomeSelfHosted (err: %v)", out.Kind, out.Err)
	}
	// Two-factor plugins accept the one-time code appended to the password.
	if !strings.Contains(gotBody, "secret123456") {
		t.Errorf("request did not append the code to the password: %s", gotBody)
	}
	if out.Password != "secret123456" {
		t.Errorf("outcome password = %q", out.Password)
	}
}

func TestSignInHostedAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login/":
			w.Write([]byte(`{"data":{"token":"tok-1","needs_second_factor":false}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	apiClient := api.NewClient(func() string { return "" })
	apiClient.BaseURL = server.URL
	svc := NewService(apiClient)

	record := &creds.Record{Username: "user", Password: "pw", SiteAddress: "example.com", IsHostedAccount: true}
	out := svc.SignIn(context.Background(), record)
	if out.Kind != OutcomeDirect {
		t.Fatalf("Kind = %v, want OutcomeDirect (err: %v)", out.Kind, out.Err)
	}
	if out.Token != "tok-1" {
		t.Errorf("Token = %q", out.Token)
	}
}

func TestSignInHostedAccountNeedsSecondFactor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"needs_second_factor":true}}`))
	}))
	defer server.Close()

	apiClient := api.NewClient(func() string { return "" })
	apiClient.BaseURL = server.URL
	svc := NewService(apiClient)

	record := &creds.Record{Username: "user", Password: "pw", IsHostedAccount: true}
	if out := svc.SignIn(context.Background(), record); out.Kind != OutcomeNeedsSecondFactor {
		t.Fatalf("Kind = %v, want OutcomeNeedsSecondFactor", out.Kind)
	}
}
