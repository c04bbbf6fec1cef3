package icloud

import "fmt"

// AuthError indicates the session was rejected or could not be confirmed:
// a transport failure during the session check, an error status, or a
// response body indicating the account is not authenticated. It is also
// returned by alias operations when the service rejects the session itself
// (as opposed to the alias request).
//
// No automatic re-authentication is attempted — this client consumes a
// pre-obtained session credential and never performs login.
type AuthError struct {
	Status int // HTTP status, when a response was received
	Reason string
	Err    error // underlying transport or decode error, when present
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := "session error"
	if e.Reason != "" {
		msg = fmt.Sprintf("session error: %s", e.Reason)
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
func (e *AuthError) Unwrap() error {
	return e.Err
}
