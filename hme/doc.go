// Package hme manages Hide My Email aliases through a validated session client.
//
// # Overview
//
// An alias is a disposable forwarding email address issued by the remote
// service. Creation is a two-phase protocol: Generate reserves a new alias
// without committing it, and Claim commits the reserved alias with a
// human-readable label. An alias that is generated but never claimed carries
// no obligation — the service expires it on its own, and this client makes no
// effort to clean it up.
//
// # Alias lifecycle
//
//	Unrequested → Provisional (after Generate) → Claimed (after Claim)
//
// A failed claim does not return the alias to Unrequested; the alias is
// abandoned and its state becomes Orphaned. Claiming the same alias twice is
// not idempotent: the second claim is expected to be rejected by the service
// because the identifier is already consumed, and that rejection is surfaced
// as a *ClaimError rather than retried or masked.
//
// # Ownership
//
// A Manager takes ownership of its session client. Only one manager should
// drive a given client: validation refreshes session tokens in place, so
// concurrent operations on the same session can race on credential state.
// Serializing operations on one manager is a caller obligation; no internal
// locking is provided.
//
// # Errors
//
// Each phase fails with its own type so callers can tell exactly which phase
// failed: *ValidationError (local, before any network call),
// *GenerationError, *ClaimError, and *icloud.AuthError when the service
// rejects the session itself. Nothing is retried; recovery is a caller
// decision.
package hme
