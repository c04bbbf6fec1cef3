package hme

// AliasState tracks where a single alias is in the generate/claim lifecycle.
// Using a typed enum instead of implicit control flow keeps the failure
// paths enumerable.
type AliasState int

const (
	// StateUnrequested is the initial state, before Generate.
	StateUnrequested AliasState = iota

	// StateProvisional means the alias is reserved but not committed.
	StateProvisional

	// StateClaimed means the alias has been committed and is permanent
	// on the service side.
	StateClaimed

	// StateOrphaned means a claim was attempted and failed; the alias is
	// abandoned and never returns to Unrequested.
	StateOrphaned
)

// String returns a human-readable name for the state.
func (s AliasState) String() string {
	switch s {
	case StateUnrequested:
		return "unrequested"
	case StateProvisional:
		return "provisional"
	case StateClaimed:
		return "claimed"
	case StateOrphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

// ProvisionalAlias is a generated-but-unclaimed address. The address is the
// provisioning identifier: it must be echoed to Claim exactly as returned by
// Generate, never reconstructed or rewritten.
type ProvisionalAlias struct {
	// Address is the alias email address reserved by the service.
	Address string

	state AliasState
}

// State returns the alias's position in the lifecycle.
func (a *ProvisionalAlias) State() AliasState {
	return a.state
}

// ClaimedAlias is the service's record of a committed alias.
type ClaimedAlias struct {
	Origin          string `json:"origin"`
	AnonymousID     string `json:"anonymousId"`
	Domain          string `json:"domain"`
	Address         string `json:"hme"`
	Label           string `json:"label"`
	Note            string `json:"note"`
	CreateTimestamp int64  `json:"createTimestamp"`
	IsActive        bool   `json:"isActive"`
	RecipientMailID string `json:"recipientMailId"`
}

// Alias is one entry of the account's registered alias list.
type Alias struct {
	Origin          string `json:"origin"`
	AnonymousID     string `json:"anonymousId"`
	Domain          string `json:"domain"`
	ForwardToEmail  string `json:"forwardToEmail"`
	Address         string `json:"hme"`
	Label           string `json:"label"`
	Note            string `json:"note"`
	CreateTimestamp int64  `json:"createTimestamp"`
	IsActive        bool   `json:"isActive"`
	RecipientMailID string `json:"recipientMailId"`
}

// AliasList is the account's alias inventory.
type AliasList struct {
	ForwardToEmails   []string `json:"forwardToEmails"`
	Aliases           []Alias  `json:"hmeEmails"`
	SelectedForwardTo string   `json:"selectedForwardTo"`
}
