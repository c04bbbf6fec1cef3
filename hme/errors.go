package hme

import "fmt"

// Service error codes observed on the alias endpoints.
const (
	// errCodeQuotaExhausted: the account has no remaining alias quota.
	errCodeQuotaExhausted = "-41015"
	// errCodeIdentifierConsumed: the provisioning identifier was already
	// claimed, has expired, or is unknown.
	errCodeIdentifierConsumed = "-41017"
)

// ValidationError indicates a claim request failed local validation.
// It is raised before any network call is made, so a doomed request never
// burns a provisional alias.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid claim request: %s %s", e.Field, e.Reason)
}

// GenerationError indicates alias generation failed: the account's alias
// quota is exhausted, the service rejected the request, or the request could
// not be delivered.
type GenerationError struct {
	Status int    // HTTP status, when a response was received
	Reason string // service-reported message, when present
	Quota  bool   // true when the service reported quota exhaustion
	Err    error  // underlying transport or decode error, when present
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	msg := "alias generation failed"
	if e.Quota {
		msg = "alias generation failed: quota exhausted"
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ClaimError indicates an alias commitment failed: the service rejected the
// provisioning identifier or the request could not be delivered.
// AlreadyClaimed distinguishes the consumed/expired-identifier rejection —
// the expected outcome of claiming the same alias twice — from other
// failures, without string matching.
type ClaimError struct {
	Address        string // the alias address the claim was for
	Status         int    // HTTP status, when a response was received
	Reason         string // service-reported message, when present
	AlreadyClaimed bool   // identifier already claimed, expired, or unknown
	Err            error  // underlying transport or decode error, when present
}

// Error implements the error interface.
func (e *ClaimError) Error() string {
	msg := fmt.Sprintf("claim failed for %s", e.Address)
	if e.AlreadyClaimed {
		msg = fmt.Sprintf("%s: identifier already claimed or expired", msg)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *ClaimError) Unwrap() error {
	return e.Err
}
