package streamauth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ForgotPassword starts the reset flow for email: it looks up the account,
// issues a single-use reset token, and dispatches the reset mail.
//
// Returns [ErrUserNotFound] when no account matches; boundary layers
// should present a uniform response regardless, so that the flow does not
// leak which addresses have accounts. The token is durable in the store
// before mail dispatch, so an [ErrNotificationFailed] result leaves a
// valid token behind and delivery can be retried without reissuing.
//
// No per-identity throttling is applied at this layer; rate limiting of
// reset requests is the boundary layer's concern.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if e == nil || e.resets == nil {
		return ErrEngineNotReady
	}

	user, found, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !found {
		e.emitAudit(ctx, auditEventResetRequested, false, email, ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	token, err := e.resets.Issue(ctx, user.Email)
	if err != nil {
		err = mapStoreErr(err)
		if errors.Is(err, ErrStoreUnavailable) {
			e.metricInc(MetricStoreUnavailable)
		}
		return err
	}

	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, auditEventResetRequested, true, user.Email, nil, nil)

	if err := e.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		e.metricInc(MetricNotificationFailure)
		e.logger.Warn("password reset mail dispatch failed",
			zap.String("identity", user.Email),
			zap.Error(err),
		)
		e.emitAudit(ctx, auditEventNotificationFailure, false, user.Email, ErrNotificationFailed, map[string]string{
			"kind": "password_reset",
		})
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return nil
}

// ResetPassword completes the reset flow: it resolves the token to its
// owning identity, re-hashes newPassword, persists the hash, invalidates
// the token, and sends a best-effort change confirmation.
//
// Returns [ErrResetTokenInvalid] for an unknown, expired, or consumed
// token without touching any user record, and [ErrUserNotFound] when the
// account vanished between token issuance and use. Invalidation happens
// only after persistence succeeds, so a persistence failure leaves the
// token valid for retry. The accepted trade-off of that ordering: a crash
// after persistence but before invalidation leaves the token replayable
// once; callers needing stronger guarantees should make
// [UserProvider.UpdatePasswordHash] idempotent.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) error {
	if e == nil || e.resets == nil {
		return ErrEngineNotReady
	}

	identity, ok, err := e.resets.Lookup(ctx, token)
	if err != nil {
		err = mapStoreErr(err)
		if errors.Is(err, ErrStoreUnavailable) {
			e.metricInc(MetricStoreUnavailable)
		}
		return err
	}
	if !ok {
		e.metricInc(MetricResetConfirmFailure)
		e.emitAudit(ctx, auditEventResetConfirm, false, "", ErrResetTokenInvalid, nil)
		return ErrResetTokenInvalid
	}

	user, found, err := e.users.GetByEmail(ctx, identity)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !found {
		// The account vanished between issuance and use. Not expected, but
		// the token must not resolve to anything.
		e.metricInc(MetricResetConfirmFailure)
		e.emitAudit(ctx, auditEventResetConfirm, false, identity, ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	newHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := e.users.UpdatePasswordHash(ctx, user.UserID, newHash); err != nil {
		e.metricInc(MetricResetConfirmFailure)
		return fmt.Errorf("persist password: %w", err)
	}

	if err := e.resets.Invalidate(ctx, token); err != nil {
		err = mapStoreErr(err)
		e.metricInc(MetricStoreUnavailable)
		e.logger.Error("reset token invalidation failed after password change",
			zap.String("identity", user.Email),
			zap.Error(err),
		)
		return err
	}

	e.metricInc(MetricResetConfirmSuccess)
	e.emitAudit(ctx, auditEventResetConfirm, true, user.Email, nil, nil)

	if err := e.mailer.SendPasswordChangeConfirmationEmail(ctx, user.Email); err != nil {
		// The password change is committed and the token is gone; a failed
		// confirmation mail is logged, not surfaced.
		e.metricInc(MetricNotificationFailure)
		e.logger.Warn("password change confirmation mail failed",
			zap.String("identity", user.Email),
			zap.Error(err),
		)
		e.emitAudit(ctx, auditEventNotificationFailure, false, user.Email, ErrNotificationFailed, map[string]string{
			"kind": "password_change_confirmation",
		})
	}

	return nil
}
