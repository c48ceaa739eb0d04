package streamauth

import (
	"context"
	"time"

	"github.com/robspecs/streamauth/internal"
	"github.com/robspecs/streamauth/kv"
)

const resetKeyPrefix = "apr"

// resetTokenStore maps opaque single-use tokens to the identity that
// requested a password reset. The token value itself is the partition key,
// so possession of the token is the only way to reach the mapping.
//
// Single-use is enforced by the orchestrator calling Invalidate after the
// password change persists; the store does not auto-delete on read because
// the flow validates first and mutates afterwards.
type resetTokenStore struct {
	store kv.Store
	ttl   time.Duration
}

func newResetTokenStore(store kv.Store, cfg ResetConfig) *resetTokenStore {
	return &resetTokenStore{store: store, ttl: cfg.TokenTTL}
}

func resetTokenKey(token string) string { return resetKeyPrefix + ":" + token }

// Issue stores a fresh high-entropy token for identity and returns it.
// No cooldown is enforced at this layer; identity-level throttling is the
// caller's concern.
func (s *resetTokenStore) Issue(ctx context.Context, identity string) (string, error) {
	token, err := internal.NewResetToken()
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, resetTokenKey(token), identity, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Lookup returns the owning identity. Absent, expired, and consumed tokens
// all report ok=false uniformly so callers cannot distinguish them.
func (s *resetTokenStore) Lookup(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	return s.store.Get(ctx, resetTokenKey(token))
}

// Invalidate deletes the mapping unconditionally; deleting an absent token
// is not an error.
func (s *resetTokenStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(ctx, resetTokenKey(token))
}
