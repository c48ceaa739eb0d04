package kv

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps any transport or backend failure. A lookup that
// cleanly finds no key is never reported through ErrUnavailable.
var ErrUnavailable = errors.New("kv store unavailable")

// Store is the TTL key-value contract backing OTP codes, attempt counters,
// cooldown markers, reset tokens, and blacklist entries.
//
// Keys and values are opaque strings. All methods are safe for unbounded
// concurrent use when the implementation is.
type Store interface {
	// Set writes value under key with the given TTL, overwriting any
	// previous value and its remaining TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value under key. The second return is false when the
	// key is absent or expired; that case is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes the given keys. Deleting an absent key is not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// IncrementWithTTL atomically increments the integer counter under key
	// and returns the new count. The TTL is attached when the counter is
	// created; later increments leave the existing expiry untouched.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
