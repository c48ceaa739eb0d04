// Package kv defines the TTL key-value store contract shared by every
// credential artifact in streamauth, plus the production Redis
// implementation.
//
// The engine performs all cross-request coordination (cooldowns, attempt
// counters, single-use tokens, blacklist entries) through [Store]. Every
// operation the engine relies on for correctness is atomic at the store
// level; callers never compose read-then-write sequences on shared keys.
//
// Implementations must report transport-level failures by wrapping
// [ErrUnavailable] so that callers can distinguish "key absent" from
// "backend unreachable". The distinction matters: authentication-path
// lookups fail closed on [ErrUnavailable].
package kv
