package streamauth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventOTPIssued           = "otp_issued"
	auditEventOTPCooldownRejected = "otp_cooldown_rejected"
	auditEventOTPConfirm          = "otp_confirm"
	auditEventOTPAttemptsExceeded = "otp_attempts_exceeded"
	auditEventResetRequested      = "password_reset_requested"
	auditEventResetConfirm        = "password_reset_confirm"
	auditEventRegisterSuccess     = "register_success"
	auditEventRegisterFailure     = "register_failure"
	auditEventRegisterDuplicate   = "register_duplicate"
	auditEventRegisterOverwrite   = "register_overwrite_disabled"
	auditEventTokenRevoked        = "token_revoked"
	auditEventNotificationFailure = "notification_failure"
)

// AuditErrorCode is the coarse classification attached to failed events.
type AuditErrorCode string

const (
	auditErrCooldown         AuditErrorCode = "cooldown_active"
	auditErrExpired          AuditErrorCode = "expired_or_missing"
	auditErrAttemptsExceeded AuditErrorCode = "attempts_exceeded"
	auditErrMismatch         AuditErrorCode = "mismatch"
	auditErrInvalidToken     AuditErrorCode = "invalid_token"
	auditErrUserNotFound     AuditErrorCode = "user_not_found"
	auditErrDuplicate        AuditErrorCode = "duplicate"
	auditErrUnverified       AuditErrorCode = "email_unverified"
	auditErrNotification     AuditErrorCode = "notification_failure"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	err error,
	metadata map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Identity:  identity,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrOTPCooldownActive):
		return auditErrCooldown
	case errors.Is(err, ErrOTPExpired):
		return auditErrExpired
	case errors.Is(err, ErrOTPAttemptsExceeded):
		return auditErrAttemptsExceeded
	case errors.Is(err, ErrOTPMismatch):
		return auditErrMismatch
	case errors.Is(err, ErrResetTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrUserExists):
		return auditErrDuplicate
	case errors.Is(err, ErrEmailNotVerified):
		return auditErrUnverified
	case errors.Is(err, ErrNotificationFailed):
		return auditErrNotification
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
