package streamauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BlacklistToken records tokenID as revoked for the given remaining
// lifetime. The entry self-expires exactly when the original token would
// have, so it is never deleted early and storage stays bounded. A
// non-positive remaining lifetime is a no-op.
func (e *Engine) BlacklistToken(ctx context.Context, tokenID string, remaining time.Duration) error {
	if e == nil || e.blacklist == nil {
		return ErrEngineNotReady
	}
	if tokenID == "" {
		return errors.New("token id required")
	}

	if err := e.blacklist.Add(ctx, tokenID, remaining); err != nil {
		err = mapStoreErr(err)
		e.metricInc(MetricStoreUnavailable)
		return err
	}

	e.metricInc(MetricTokenRevoked)
	e.emitAudit(ctx, auditEventTokenRevoked, true, "", nil, map[string]string{
		"token_id": tokenID,
	})

	return nil
}

// IsTokenBlacklisted answers the membership query that every
// protected-request authentication check must make before trusting an
// otherwise-valid signed token. A store outage surfaces as
// [ErrStoreUnavailable]; callers must treat that as fail-closed and reject
// the request, since failing open would silently un-revoke tokens.
func (e *Engine) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	if e == nil || e.blacklist == nil {
		return false, ErrEngineNotReady
	}

	revoked, err := e.blacklist.Contains(ctx, tokenID)
	if err != nil {
		err = mapStoreErr(err)
		e.metricInc(MetricStoreUnavailable)
		return false, err
	}

	if revoked {
		e.metricInc(MetricBlacklistHit)
	}
	return revoked, nil
}

// RevokeToken blacklists an already-authenticated compact JWT for the
// remainder of its lifetime. The claims are read without signature
// verification — the caller has verified the token to accept the request
// that is now revoking it. The jti claim keys the entry when present,
// falling back to the raw compact form. Tokens without an exp claim are
// rejected: an entry with no expiry would never self-remove.
func (e *Engine) RevokeToken(ctx context.Context, rawToken string) error {
	if e == nil || e.blacklist == nil {
		return ErrEngineNotReady
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("read token expiry: %w", err)
	}
	if exp == nil {
		return errors.New("token has no expiry")
	}

	tokenID := rawToken
	if jti, ok := claims["jti"].(string); ok && jti != "" {
		tokenID = jti
	}

	return e.BlacklistToken(ctx, tokenID, time.Until(exp.Time))
}
