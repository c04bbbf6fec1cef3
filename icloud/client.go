// Package icloud provides the authenticated session client for the iCloud
// web-service API.
//
// A Client is constructed from a parsed session credential and must be
// validated before any service call. Validate confirms the session with the
// setup endpoint, discovers the per-account web-service URLs, and applies any
// renewed session tokens the service issues. Token refresh replaces the
// owned credential, so every subsequent request automatically carries the
// current tokens.
//
// A Client is not safe for concurrent use: Validate mutates the owned
// credential in place, so callers must serialize operations on one client
// (one client per logical session, driven from one flow at a time).
package icloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hidemail/hidemail-core/config"
	"github.com/hidemail/hidemail-core/credential"
	"github.com/hidemail/hidemail-core/logger"
)

const (
	// defaultSetupURL is the production session-check endpoint base.
	defaultSetupURL = "https://setup.icloud.com/setup/ws/1"

	// mailSettingsService is the webservices key for Hide My Email.
	mailSettingsService = "premiummailsettings"

	clientBuildNumber = "2420Build19"
	userAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	origin            = "https://www.icloud.com"

	defaultHTTPTimeout = config.DefaultTimeoutSeconds * time.Second
)

// Service describes a web service discovered during validation.
type Service struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// validateResponse is the body of a successful session-check request.
type validateResponse struct {
	Webservices map[string]Service `json:"webservices"`
}

// Client mediates all authenticated calls to the iCloud web services.
// It owns one session credential; the credential is replaced (never merged
// in place) when validation returns renewed tokens.
type Client struct {
	httpClient *http.Client
	cred       credential.Credential
	setupURL   string
	clientID   string
	services   map[string]Service
	validated  bool
}

// NewClient creates a session client from a parsed credential.
func NewClient(cred credential.Credential) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		cred:       cred,
		setupURL:   defaultSetupURL,
		clientID:   uuid.New().String(),
	}
}

// NewClientWithHTTP creates a session client with a custom HTTP client and
// setup endpoint base (for testing).
func NewClientWithHTTP(cred credential.Credential, httpClient *http.Client, setupURL string) *Client {
	if setupURL == "" {
		setupURL = defaultSetupURL
	}
	return &Client{
		httpClient: httpClient,
		cred:       cred,
		setupURL:   setupURL,
		clientID:   uuid.New().String(),
	}
}

// NewClientWithConfig creates a session client applying settings from cfg.
// A nil cfg behaves like NewClient.
func NewClientWithConfig(cred credential.Credential, cfg *config.Config) *Client {
	c := NewClient(cred)
	if cfg == nil {
		return c
	}
	logger.SetDebug(cfg.Debug)
	c.httpClient.Timeout = cfg.Timeout()
	if cfg.SetupURL != "" {
		c.setupURL = cfg.SetupURL
	}
	return c
}

// NewRequest builds a request carrying the current session context: the
// Cookie header from the owned credential, the browser-equivalent headers
// the service expects, and the clientBuildNumber/clientId query parameters.
// Because the credential is read at call time, requests built after a
// validation automatically carry any refreshed tokens.
func (c *Client) NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", c.cred.Header())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	q := req.URL.Query()
	q.Set("clientBuildNumber", clientBuildNumber)
	q.Set("clientId", c.clientID)
	req.URL.RawQuery = q.Encode()

	return req, nil
}

// Do executes a request built by NewRequest.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// Validate confirms the session with the setup endpoint.
//
// On success the client is marked validated, the discovered web-service map
// is stored, and any renewed session tokens from the response replace the
// corresponding credential entries. On any failure — transport error, error
// status, undecodable body, or a body indicating the account is not
// authenticated for Hide My Email — Validate returns an *AuthError and
// leaves the session state untouched.
//
// Validate is idempotent: calling it again re-runs the check and may
// re-refresh tokens.
func (c *Client) Validate(ctx context.Context) error {
	log := logger.WithComponent("icloud")

	req, err := c.NewRequest(ctx, http.MethodPost, c.setupURL+"/validate", nil)
	if err != nil {
		return &AuthError{Reason: "failed to build session-check request", Err: err}
	}

	resp, err := c.Do(req)
	if err != nil {
		log.Warn("session check failed", "error", err)
		return &AuthError{Reason: "transport failure during session check", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn("session rejected", "status", resp.StatusCode)
		return &AuthError{Status: resp.StatusCode, Reason: "session-check request rejected"}
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &AuthError{Reason: "failed to parse session-check response", Err: err}
	}

	svc, ok := body.Webservices[mailSettingsService]
	if !ok {
		return &AuthError{Reason: "account has no Hide My Email service"}
	}
	if svc.Status != "active" {
		return &AuthError{Reason: fmt.Sprintf("Hide My Email service status is %q, not active", svc.Status)}
	}

	// All checks passed — commit. Renewed tokens replace the matching
	// credential entries; names the service did not re-issue are kept.
	updates := make(map[string]string)
	for _, ck := range resp.Cookies() {
		updates[ck.Name] = ck.Value
	}
	if len(updates) > 0 {
		c.cred = c.cred.Refreshed(updates)
	}
	c.services = body.Webservices
	c.validated = true

	log.Info("session validated", "services", len(body.Webservices), "refreshedTokens", len(updates))
	return nil
}

// Validated reports whether at least one Validate call has succeeded.
func (c *Client) Validated() bool {
	return c.validated
}

// ServiceURL returns the discovered base URL for a web service.
// It reports false before a successful Validate or when the service was not
// part of the validate response.
func (c *Client) ServiceURL(name string) (string, bool) {
	svc, ok := c.services[name]
	if !ok || svc.URL == "" {
		return "", false
	}
	return svc.URL, true
}

// MailSettingsURL returns the Hide My Email service base URL.
func (c *Client) MailSettingsURL() (string, bool) {
	return c.ServiceURL(mailSettingsService)
}

// Credential returns a copy of the current session credential, including any
// tokens refreshed by Validate.
func (c *Client) Credential() credential.Credential {
	return c.cred.Clone()
}
