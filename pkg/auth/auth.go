// Package auth implements the authentication service behind the login form.
//
// A sign-in attempt produces exactly one Outcome: a closed set of result
// variants instead of a delegate-callback protocol, so callers switch on
// Outcome.Kind rather than implementing four callbacks.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sitelinkhq/sitelink/pkg/api"
	"github.com/sitelinkhq/sitelink/pkg/creds"
	"github.com/sitelinkhq/sitelink/pkg/xmlrpc"
)

// OutcomeKind discriminates the result variants of a sign-in attempt.
type OutcomeKind int

const (
	// OutcomeDirect is a hosted-account success carrying a bearer token.
	OutcomeDirect OutcomeKind = iota
	// OutcomeSelfHosted is a self-hosted success carrying the verified
	// credentials and the site's XML-RPC endpoint.
	OutcomeSelfHosted
	// OutcomeNeedsSecondFactor means primary credentials were accepted but
	// a one-time verification code is required.
	OutcomeNeedsSecondFactor
	// OutcomeFailed is a sign-in failure; Err carries the cause.
	OutcomeFailed
)

// Outcome is the single result of a sign-in or second-factor attempt.
type Outcome struct {
	Kind OutcomeKind

	Username string

	// Direct fields
	Token string

	// SelfHosted fields
	Password       string
	XMLRPCEndpoint string
	Options        map[string]interface{}

	// Failed field
	Err error
}

// Failed wraps an error into a failure outcome.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// Authenticator is the contract the login screens consume.
type Authenticator interface {
	// SignIn validates the record's credentials and returns exactly one
	// outcome. It blocks; callers run it off the UI loop.
	SignIn(ctx context.Context, record *creds.Record) Outcome

	// VerifySecondFactor completes a sign-in that returned
	// OutcomeNeedsSecondFactor using a one-time code.
	VerifySecondFactor(ctx context.Context, record *creds.Record, code string) Outcome
}

// ErrInvalidCredentials is returned when the site rejects the username or
// password outright.
var ErrInvalidCredentials = errors.New("the username or password is incorrect")

// XML-RPC fault codes raised by self-hosted sites.
const (
	// twoFactorFaultCode is what a two-factor plugin raises when a
	// verification code is required.
	twoFactorFaultCode = 425
	// badCredentialsFaultCode rejects the username/password pair.
	badCredentialsFaultCode = 403
)

// Service is the production Authenticator: hosted accounts go through the
// bridge API, self-hosted sites are verified over XML-RPC.
type Service struct {
	API *api.Client

	// EndpointFor maps a bare host to its XML-RPC endpoint. Overridable in
	// tests; the default probes the conventional path.
	EndpointFor func(host string) string

	// newRPC builds the XML-RPC client for an endpoint; a test seam.
	newRPC func(endpoint string) *xmlrpc.Client
}

// NewService creates the production authentication service.
func NewService(apiClient *api.Client) *Service {
	return &Service{
		API:         apiClient,
		EndpointFor: defaultEndpointFor,
		newRPC:      xmlrpc.NewClient,
	}
}

func defaultEndpointFor(host string) string {
	return "https://" + host + "/xmlrpc.php"
}

// SignIn implements Authenticator.
func (s *Service) SignIn(ctx context.Context, record *creds.Record) Outcome {
	if record.IsHostedAccount {
		return s.hostedLogin(record, "")
	}
	return s.selfHostedLogin(ctx, record, record.Password)
}

// VerifySecondFactor implements Authenticator. Self-hosted two-factor
// plugins accept the one-time code appended to the password; hosted accounts
// post the code to the bridge.
func (s *Service) VerifySecondFactor(ctx context.Context, record *creds.Record, code string) Outcome {
	if record.IsHostedAccount {
		return s.hostedLogin(record, code)
	}
	return s.selfHostedLogin(ctx, record, record.Password+code)
}

func (s *Service) selfHostedLogin(ctx context.Context, record *creds.Record, password string) Outcome {
	endpoint := s.EndpointFor(record.SiteAddress)
	rpc := s.newRPC(endpoint)

	result, err := rpc.Call(ctx, "wp.getUsersBlogs", record.Username, password)
	if err != nil {
		var fault *xmlrpc.Fault
		if errors.As(err, &fault) {
			switch fault.Code {
			case twoFactorFaultCode:
				return Outcome{Kind: OutcomeNeedsSecondFactor, Username: record.Username}
			case badCredentialsFaultCode:
				return Failed(ErrInvalidCredentials)
			}
		}
		return Failed(fmt.Errorf("sign in to %s failed: %w", record.SiteAddress, err))
	}

	options := firstBlog(result)
	if ep, ok := options["xmlrpc"].(string); ok && ep != "" {
		endpoint = ep
	}

	return Outcome{
		Kind:           OutcomeSelfHosted,
		Username:       record.Username,
		Password:       password,
		XMLRPCEndpoint: endpoint,
		Options:        options,
	}
}

// firstBlog extracts the first blog struct from a wp.getUsersBlogs response.
func firstBlog(result interface{}) map[string]interface{} {
	blogs, ok := result.([]interface{})
	if !ok || len(blogs) == 0 {
		return map[string]interface{}{}
	}
	blog, ok := blogs[0].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return blog
}

func (s *Service) hostedLogin(record *creds.Record, code string) Outcome {
	payload := map[string]string{
		"username": record.Username,
		"password": record.Password,
	}
	endpoint := "auth.login"
	if code != "" {
		payload["code"] = code
		endpoint = "auth.two_factor"
	}

	resp, err := s.API.Call(endpoint, "POST", payload)
	if err != nil {
		return Failed(fmt.Errorf("login request failed: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized, http.StatusForbidden:
		return Failed(ErrInvalidCredentials)
	case http.StatusUpgradeRequired:
		return Outcome{Kind: OutcomeNeedsSecondFactor, Username: record.Username}
	default:
		return Failed(fmt.Errorf("login failed with status %d", resp.StatusCode))
	}

	var res struct {
		Data struct {
			Token             string `json:"token"`
			NeedsSecondFactor bool   `json:"needs_second_factor"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Failed(fmt.Errorf("failed to parse login response: %w", err))
	}

	if res.Data.NeedsSecondFactor {
		return Outcome{Kind: OutcomeNeedsSecondFactor, Username: record.Username}
	}

	return Outcome{
		Kind:     OutcomeDirect,
		Username: record.Username,
		Token:    res.Data.Token,
	}
}
