package streamauth

import (
	"context"
	"time"

	"github.com/robspecs/streamauth/kv"
)

const blacklistKeyPrefix = "abl"

// tokenBlacklist records revoked JWT identifiers. Each entry's TTL matches
// the remaining lifetime of the revoked token, so the entry self-removes
// exactly when the token would have expired anyway and storage stays
// bounded. Entries are never deleted early.
type tokenBlacklist struct {
	store kv.Store
}

func newTokenBlacklist(store kv.Store) *tokenBlacklist {
	return &tokenBlacklist{store: store}
}

func blacklistKey(tokenID string) string { return blacklistKeyPrefix + ":" + tokenID }

// Add writes the sentinel entry. A non-positive remaining lifetime means
// the token is already dead and nothing needs recording.
func (b *tokenBlacklist) Add(ctx context.Context, tokenID string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	return b.store.Set(ctx, blacklistKey(tokenID), "true", remaining)
}

// Contains reports membership. A store failure propagates so the caller
// can fail closed; it is never collapsed into "not blacklisted".
func (b *tokenBlacklist) Contains(ctx context.Context, tokenID string) (bool, error) {
	return b.store.Exists(ctx, blacklistKey(tokenID))
}
