// Package credgate forwards caller credentials to the external
// authentication and authorization services.
package credgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Header names the gateway forwards from the inbound request.
const (
	HeaderAuthorization = "Authorization"
	HeaderHost          = "X-Real-Host"
)

// Credentials are the forwarded caller headers.
type Credentials struct {
	Authorization string
	Host          string
}

// Present reports whether both required headers were supplied.
func (c Credentials) Present() bool {
	return c.Authorization != "" && c.Host != ""
}

// Identity is the authenticated caller.
type Identity struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	EmailID  string `json:"email_id"`
}

// Grant is the authorizer's resolved access decision.
type Grant struct {
	Policy PolicyDoc `json:"policy"`
}

// PolicyDoc is the wire form of a resolved policy.
type PolicyDoc struct {
	Categories []string          `json:"categories"`
	Attributes map[string]string `json:"attributes"`
}

// StatusError carries an upstream rejection verbatim so the transport
// layer can mirror the status code.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s service returned status %d", e.Service, e.StatusCode)
}

// Client calls the credential services on the host named by the
// caller's X-Real-Host header.
type Client struct {
	http          *http.Client
	scheme        string
	apiPolicies   []string
	requiredCreds []string
}

// New creates a credential gateway client.
func New(scheme string, timeout time.Duration, apiPolicies, requiredCreds []string) *Client {
	return &Client{
		http:          &http.Client{Timeout: timeout},
		scheme:        scheme,
		apiPolicies:   apiPolicies,
		requiredCreds: requiredCreds,
	}
}

// Authenticate resolves the caller identity. A non-200 upstream answer
// becomes a StatusError with the upstream code.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (Identity, error) {
	url := fmt.Sprintf("%s://%s/authenticate", c.scheme, creds.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return Identity{}, fmt.Errorf("build authenticate request: %w", err)
	}
	req.Header.Set(HeaderAuthorization, creds.Authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("call authenticate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, &StatusError{Service: "authentication", StatusCode: resp.StatusCode}
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return Identity{}, fmt.Errorf("decode authenticate response: %w", err)
	}
	return id, nil
}

// authorizePayload matches the authorizer's wire contract: the policy
// and credential lists travel as JSON strings inside the JSON body.
type authorizePayload struct {
	UserID        string `json:"user_id"`
	APIPolicies   string `json:"api_policies"`
	RequiredCreds string `json:"required_creds"`
}

// Authorize resolves the caller's access policy.
func (c *Client) Authorize(ctx context.Context, creds Credentials, userID string) (Grant, error) {
	policies, err := json.Marshal(c.apiPolicies)
	if err != nil {
		return Grant{}, fmt.Errorf("marshal api policies: %w", err)
	}
	required, err := json.Marshal(c.requiredCreds)
	if err != nil {
		return Grant{}, fmt.Errorf("marshal required creds: %w", err)
	}

	body, err := json.Marshal(authorizePayload{
		UserID:        userID,
		APIPolicies:   string(policies),
		RequiredCreds: string(required),
	})
	if err != nil {
		return Grant{}, fmt.Errorf("marshal authorize payload: %w", err)
	}

	url := fmt.Sprintf("%s://%s/cgauthorize", c.scheme, creds.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Grant{}, fmt.Errorf("build authorize request: %w", err)
	}
	req.Header.Set(HeaderAuthorization, creds.Authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Grant{}, fmt.Errorf("call authorize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Grant{}, &StatusError{Service: "authorization", StatusCode: resp.StatusCode}
	}

	var grant Grant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return Grant{}, fmt.Errorf("decode authorize response: %w", err)
	}
	return grant, nil
}
