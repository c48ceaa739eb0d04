// Package streamauth provides the credential and one-time-token lifecycle
// engine for a streaming platform backend: short-lived email OTPs with
// cooldown and attempt-cap policies, single-use password-reset tokens, and
// a self-expiring revoked-JWT blacklist, all coordinated through a shared
// TTL key-value store.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. The engine itself holds no mutable state; every piece of
// cross-request coordination (cooldown markers, attempt counters, token
// consumption) is expressed as atomic operations against [kv.Store].
//
// # Architecture boundaries
//
// streamauth is the public surface. It exposes [Engine], [Builder],
// [Config], the collaborator interfaces ([UserProvider], [Mailer],
// [PasswordHasher]), and the error variables. Secret generation lives under
// internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Reimplement TTL enforcement — the backing store owns expiry.
//   - Store or compare plaintext passwords — hashing is delegated to
//     [PasswordHasher].
//   - Deliver email — dispatch is delegated to [Mailer], and a delivery
//     failure never rolls back store state that was already committed.
//
// # Failure contract
//
// A store outage always surfaces as [ErrStoreUnavailable] and is never
// translated into "code invalid" or "token invalid"; those errors are
// reserved for genuine absence or mismatch. Authentication-path callers
// must treat [ErrStoreUnavailable] from blacklist checks as fail-closed.
package streamauth
