package streamauth

import "errors"

var (
	// ErrOTPCooldownActive is returned by RequestEmailOTP while the
	// reissuance cooldown marker for the identity is still alive.
	ErrOTPCooldownActive = errors.New("otp cooldown active")
	// ErrOTPExpired is returned when no stored code exists for the identity,
	// whether one was never issued or it already expired.
	ErrOTPExpired = errors.New("otp expired or missing")
	// ErrOTPAttemptsExceeded is returned once the failed-attempt cap is
	// reached; the stored code is removed so the identity must re-issue.
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	// ErrOTPMismatch is returned when a stored code exists but the submitted
	// code does not match it.
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrResetTokenInvalid covers absent, expired, and already-consumed
	// password-reset tokens uniformly so callers cannot enumerate which.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	// ErrUserExists is returned by Register when an enabled account already
	// owns the email address.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no account matches the identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailNotVerified is returned by Register when verified-email
	// enforcement is enabled and no verification marker exists.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrNotificationFailed reports an outbound mail failure. Store state
	// committed before dispatch is never rolled back, so callers may retry
	// delivery without issuing a new code or token.
	ErrNotificationFailed = errors.New("notification dispatch failed")
	// ErrStoreUnavailable reports a backing-store outage. It is always
	// surfaced, never silently retried into a wrong answer, and blacklist
	// callers must fail closed on it.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrEngineNotReady is returned by Engine methods before Build wired
	// the required collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
)
