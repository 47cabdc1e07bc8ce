// Package remoteapi delegates verification to an external HTTP service
// instead of the local DNS/SMTP gates.
package remoteapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the VerifyRight-compatible verification endpoint.
const DefaultBaseURL = "https://verifyright.co/verify"

// DefaultTimeout bounds the single request; there is no retry.
const DefaultTimeout = 10 * time.Second

// Verdict maps an address's validity and its reason string.
const (
	ReasonValid   = "Valid"
	ReasonInvalid = "Invalid according to API"
)

// Client issues single GET requests of the form
// <base>/<address>?token=<token> and reads a {"status": bool} body.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Config configures the client. Zero values get defaults; Token is the
// caller's responsibility (the pipeline only builds a Client when one
// is present).
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client // injectable for testing
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: cfg.BaseURL, token: cfg.Token, httpClient: hc}
}

type statusBody struct {
	Status bool `json:"status"`
}

// Verify asks the remote service about one address. The boolean is the
// service's verdict; any transport, HTTP or parse failure comes back as
// an invalid verdict with the cause embedded in the reason. Verify
// never returns a Go error: remote trouble is a verdict, not a fault.
func (c *Client) Verify(ctx context.Context, address string) (bool, string) {
	endpoint := fmt.Sprintf("%s/%s?token=%s",
		c.baseURL, url.PathEscape(address), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Sprintf("API error: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Sprintf("API error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("API error: HTTP %d", resp.StatusCode)
	}

	var body statusBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Sprintf("API error: %v", err)
	}

	if body.Status {
		return true, ReasonValid
	}
	return false, ReasonInvalid
}
