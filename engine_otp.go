package streamauth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// RequestEmailOTP issues a one-time passcode for email and dispatches it
// through the mailer. The code, its zeroed attempt counter, and the
// reissuance cooldown marker are durable in the store before dispatch is
// attempted, so a mail failure — surfaced as [ErrNotificationFailed]
// alongside the still-valid code — never rolls issuance back, and the
// caller may retry delivery without generating a new code.
//
// Returns [ErrOTPCooldownActive] while the cooldown from the previous
// issuance is alive. The email is used verbatim as the partition key; any
// normalization is the caller's concern.
func (e *Engine) RequestEmailOTP(ctx context.Context, email string) (string, error) {
	if e == nil || e.otp == nil {
		return "", ErrEngineNotReady
	}

	code, err := e.otp.Issue(ctx, email)
	if err != nil {
		err = mapStoreErr(err)
		if errors.Is(err, ErrOTPCooldownActive) {
			e.metricInc(MetricOTPCooldownRejected)
			e.emitAudit(ctx, auditEventOTPCooldownRejected, false, email, err, nil)
		} else if errors.Is(err, ErrStoreUnavailable) {
			e.metricInc(MetricStoreUnavailable)
		}
		return "", err
	}

	e.metricInc(MetricOTPIssued)
	e.emitAudit(ctx, auditEventOTPIssued, true, email, nil, nil)

	if err := e.mailer.SendOTPEmail(ctx, email, code); err != nil {
		e.metricInc(MetricNotificationFailure)
		e.logger.Warn("otp mail dispatch failed",
			zap.String("identity", email),
			zap.Error(err),
		)
		e.emitAudit(ctx, auditEventNotificationFailure, false, email, ErrNotificationFailed, map[string]string{
			"kind": "otp",
		})
		return code, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return code, nil
}

// ConfirmEmailOTP validates a submitted code for email.
//
// On success the OTP artifacts are destroyed, the cooldown ends early, and
// a verification marker is recorded for the address. Failure kinds:
// [ErrOTPExpired] when no code is stored, [ErrOTPAttemptsExceeded] once the
// failed-attempt cap is hit (the code is destroyed without being compared),
// and [ErrOTPMismatch] for a wrong code, which consumes one attempt.
func (e *Engine) ConfirmEmailOTP(ctx context.Context, email, code string) error {
	if e == nil || e.otp == nil {
		return ErrEngineNotReady
	}

	ok, err := e.otp.Validate(ctx, email, code)
	if err != nil {
		err = mapStoreErr(err)
		switch {
		case errors.Is(err, ErrOTPAttemptsExceeded):
			e.metricInc(MetricOTPAttemptsExceeded)
			e.emitAudit(ctx, auditEventOTPAttemptsExceeded, false, email, err, nil)
		case errors.Is(err, ErrOTPExpired):
			e.metricInc(MetricOTPConfirmFailure)
			e.emitAudit(ctx, auditEventOTPConfirm, false, email, err, nil)
		case errors.Is(err, ErrStoreUnavailable):
			e.metricInc(MetricStoreUnavailable)
		}
		return err
	}
	if !ok {
		e.metricInc(MetricOTPConfirmFailure)
		e.emitAudit(ctx, auditEventOTPConfirm, false, email, ErrOTPMismatch, nil)
		return ErrOTPMismatch
	}

	if err := e.otp.MarkVerified(ctx, email); err != nil {
		err = mapStoreErr(err)
		e.metricInc(MetricStoreUnavailable)
		return err
	}

	e.metricInc(MetricOTPConfirmSuccess)
	e.emitAudit(ctx, auditEventOTPConfirm, true, email, nil, nil)

	return nil
}

// IsEmailVerified reports whether email carries a live verification marker
// from a successful [Engine.ConfirmEmailOTP].
func (e *Engine) IsEmailVerified(ctx context.Context, email string) (bool, error) {
	if e == nil || e.otp == nil {
		return false, ErrEngineNotReady
	}

	verified, err := e.otp.IsVerified(ctx, email)
	if err != nil {
		return false, mapStoreErr(err)
	}
	return verified, nil
}
