package hme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hidemail/hidemail-core/config"
	"github.com/hidemail/hidemail-core/icloud"
	"github.com/hidemail/hidemail-core/logger"
)

const (
	generatePath = "/v1/hme/generate"
	reservePath  = "/v1/hme/reserve"
	listPath     = "/v2/hme/list"
)

// serviceError is the error payload of a failed alias request.
type serviceError struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}

func (e *serviceError) message() string {
	if e == nil {
		return ""
	}
	return e.ErrorMessage
}

func (e *serviceError) code() string {
	if e == nil {
		return ""
	}
	return e.ErrorCode
}

// generateResponse is the body of an alias-generation request.
type generateResponse struct {
	Success   bool  `json:"success"`
	Timestamp int64 `json:"timestamp"`
	Result    struct {
		HME string `json:"hme"`
	} `json:"result"`
	Error *serviceError `json:"error"`
}

// reserveRequest is the payload of an alias-commitment request.
type reserveRequest struct {
	HME   string `json:"hme"`
	Label string `json:"label"`
	Note  string `json:"note"`
}

// reserveResponse is the body of an alias-commitment request.
type reserveResponse struct {
	Success   bool  `json:"success"`
	Timestamp int64 `json:"timestamp"`
	Result    struct {
		HME ClaimedAlias `json:"hme"`
	} `json:"result"`
	Error *serviceError `json:"error"`
}

// listResponse is the body of an alias-list request.
type listResponse struct {
	Success   bool          `json:"success"`
	Timestamp int64         `json:"timestamp"`
	Result    AliasList     `json:"result"`
	Error     *serviceError `json:"error"`
}

// Manager drives the two-phase alias lifecycle against the Hide My Email
// endpoints. It owns its session client; see the package documentation for
// the single-writer discipline.
type Manager struct {
	client      *icloud.Client
	baseURL     string
	labelPrefix string
	defaultNote string
}

// FromClient creates a Manager by taking ownership of a validated session
// client. It fails with an *icloud.AuthError if the client has not been
// validated or the mail settings service URL was not discovered — the
// validate-before-generate ordering is enforced here, at construction.
func FromClient(c *icloud.Client) (*Manager, error) {
	if !c.Validated() {
		return nil, &icloud.AuthError{Reason: "session has not been validated"}
	}
	base, ok := c.MailSettingsURL()
	if !ok {
		return nil, &icloud.AuthError{Reason: "mail settings service URL not discovered"}
	}
	return &Manager{client: c, baseURL: base}, nil
}

// FromClientWithConfig creates a Manager and applies the label prefix and
// default note from cfg. A nil cfg behaves like FromClient.
func FromClientWithConfig(c *icloud.Client, cfg *config.Config) (*Manager, error) {
	m, err := FromClient(c)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		m.labelPrefix = cfg.LabelPrefix
		m.defaultNote = cfg.DefaultNote
	}
	return m, nil
}

// isAuthStatus reports whether an HTTP status means the session itself was
// rejected rather than the alias request.
func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized ||
		code == http.StatusForbidden ||
		code == http.StatusMisdirectedRequest
}

// Generate reserves a new alias. The returned alias is provisional: it is
// not on the account's permanent alias list, and if never claimed the
// service expires it on its own.
//
// Fails with *GenerationError when the service rejects the request (quota
// exhaustion is flagged on the error) or on transport failure, and with
// *icloud.AuthError when the session is rejected.
func (m *Manager) Generate(ctx context.Context) (*ProvisionalAlias, error) {
	log := logger.WithComponent("hme")

	req, err := m.client.NewRequest(ctx, http.MethodPost, m.baseURL+generatePath, nil)
	if err != nil {
		return nil, &GenerationError{Reason: "failed to build generate request", Err: err}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		log.Warn("alias generation failed", "error", err)
		return nil, &GenerationError{Reason: "transport failure", Err: err}
	}
	defer resp.Body.Close()

	if isAuthStatus(resp.StatusCode) {
		return nil, &icloud.AuthError{Status: resp.StatusCode, Reason: "session rejected by alias generation endpoint"}
	}
	if resp.StatusCode >= 400 {
		return nil, &GenerationError{Status: resp.StatusCode, Reason: "generate request rejected"}
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &GenerationError{Reason: "failed to parse generate response", Err: err}
	}

	if !body.Success {
		return nil, &GenerationError{
			Reason: body.Error.message(),
			Quota:  body.Error.code() == errCodeQuotaExhausted,
		}
	}
	if body.Result.HME == "" {
		return nil, &GenerationError{Reason: "generate response carried no alias address"}
	}

	log.Info("alias generated", "domain", addressDomain(body.Result.HME))
	return &ProvisionalAlias{Address: body.Result.HME, state: StateProvisional}, nil
}

// Claim commits a provisional alias with a label and an optional note,
// making it permanent on the service side. The alias address is echoed to
// the service exactly as Generate returned it.
//
// An empty label fails locally with *ValidationError before any network
// call. A service rejection fails with *ClaimError; the consumed-identifier
// case (already claimed, expired, unknown) is flagged on the error, since a
// second claim of the same alias is expected to fail that way. A rejected
// claim leaves the alias Orphaned — it is not retried and does not return
// to Unrequested.
func (m *Manager) Claim(ctx context.Context, alias *ProvisionalAlias, label, note string) (*ClaimedAlias, error) {
	log := logger.WithComponent("hme")

	if alias == nil || alias.Address == "" {
		return nil, &ValidationError{Field: "alias", Reason: "must reference a generated alias"}
	}
	if strings.TrimSpace(label) == "" {
		return nil, &ValidationError{Field: "label", Reason: "must not be empty"}
	}

	if m.labelPrefix != "" {
		label = m.labelPrefix + label
	}
	if note == "" {
		note = m.defaultNote
	}

	payload, err := json.Marshal(reserveRequest{HME: alias.Address, Label: label, Note: note})
	if err != nil {
		return nil, &ClaimError{Address: alias.Address, Reason: "failed to encode reserve payload", Err: err}
	}

	req, err := m.client.NewRequest(ctx, http.MethodPost, m.baseURL+reservePath, bytes.NewReader(payload))
	if err != nil {
		return nil, &ClaimError{Address: alias.Address, Reason: "failed to build reserve request", Err: err}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		log.Warn("alias claim failed", "error", err)
		m.orphan(alias)
		return nil, &ClaimError{Address: alias.Address, Reason: "transport failure", Err: err}
	}
	defer resp.Body.Close()

	if isAuthStatus(resp.StatusCode) {
		m.orphan(alias)
		return nil, &icloud.AuthError{Status: resp.StatusCode, Reason: "session rejected by alias commitment endpoint"}
	}
	if resp.StatusCode >= 400 {
		m.orphan(alias)
		return nil, &ClaimError{Address: alias.Address, Status: resp.StatusCode, Reason: "reserve request rejected"}
	}

	var body reserveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		m.orphan(alias)
		return nil, &ClaimError{Address: alias.Address, Reason: "failed to parse reserve response", Err: err}
	}

	if !body.Success {
		m.orphan(alias)
		return nil, &ClaimError{
			Address:        alias.Address,
			Reason:         body.Error.message(),
			AlreadyClaimed: body.Error.code() == errCodeIdentifierConsumed,
		}
	}

	claimed := body.Result.HME
	if claimed.Address != alias.Address || !claimed.IsActive {
		m.orphan(alias)
		return nil, &ClaimError{
			Address: alias.Address,
			Reason:  fmt.Sprintf("reserve result mismatch: got %s (active=%t)", claimed.Address, claimed.IsActive),
		}
	}

	alias.state = StateClaimed
	log.Info("alias claimed", "label", label)
	return &claimed, nil
}

// orphan marks a provisional alias as abandoned after a failed claim
// attempt. An already-claimed alias keeps its state.
func (m *Manager) orphan(alias *ProvisionalAlias) {
	if alias.state == StateProvisional {
		alias.state = StateOrphaned
	}
}

// GenerateAndClaim generates an alias and immediately claims it with the
// given label and note. The label is validated before generation, so an
// empty label cannot burn a provisional alias. If Generate fails, its error
// is returned and no claim is attempted; if Claim fails, its error is
// returned and the orphaned alias is neither retried nor rolled back — the
// service is the source of truth for cleanup of unclaimed aliases.
func (m *Manager) GenerateAndClaim(ctx context.Context, label, note string) (*ClaimedAlias, error) {
	if strings.TrimSpace(label) == "" {
		return nil, &ValidationError{Field: "label", Reason: "must not be empty"}
	}

	alias, err := m.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return m.Claim(ctx, alias, label, note)
}

// List fetches the account's alias inventory: registered aliases, the
// available forward-to addresses, and the selected forward-to address.
func (m *Manager) List(ctx context.Context) (*AliasList, error) {
	req, err := m.client.NewRequest(ctx, http.MethodGet, m.baseURL+listPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alias list: %w", err)
	}
	defer resp.Body.Close()

	if isAuthStatus(resp.StatusCode) {
		return nil, &icloud.AuthError{Status: resp.StatusCode, Reason: "session rejected by alias list endpoint"}
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("alias list request returned status %d", resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse alias list response: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("alias list request failed: %s", body.Error.message())
	}

	logger.WithComponent("hme").Debug("alias list fetched", "aliases", len(body.Result.Aliases))
	return &body.Result, nil
}

// addressDomain returns the domain part of an alias address for logging.
// The local part is the secret half of an alias and stays out of logs.
func addressDomain(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return address[i+1:]
	}
	return ""
}
