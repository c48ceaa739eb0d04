package streamauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEngineRequestEmailOTPSendsCode(t *testing.T) {
	fx := newTestEngine(t, nil)
	ctx := context.Background()

	code, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	mail := fx.mailer.last(t)
	require.Equal(t, "otp", mail.kind)
	require.Equal(t, "alice@example.com", mail.email)
	require.Equal(t, code, mail.body)

	require.Equal(t, uint64(1), fx.engine.MetricsSnapshot().Counters[MetricOTPIssued])
}

func TestEngineRequestEmailOTPCooldown(t *testing.T) {
	fx := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)

	_, err = fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.ErrorIs(t, err, ErrOTPCooldownActive)
	require.Equal(t, 1, fx.mailer.count())

	fx.mr.FastForward(61 * time.Second)

	_, err = fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, 2, fx.mailer.count())
}

func TestEngineRequestEmailOTPMailFailureKeepsCode(t *testing.T) {
	fx := newTestEngine(t, nil)
	fx.mailer.failOTP = true
	ctx := context.Background()

	code, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.ErrorIs(t, err, ErrNotificationFailed)
	require.NotEmpty(t, code, "issued code must be returned so delivery can be retried")

	// Issuance was not rolled back: the code is live and confirmable.
	require.NoError(t, fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", code))
}

func TestEngineConfirmEmailOTPLifecycle(t *testing.T) {
	fx := newTestEngine(t, nil)
	ctx := context.Background()

	code, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)

	require.ErrorIs(t, fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", "000000"), ErrOTPMismatch)

	require.NoError(t, fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", code))

	verified, err := fx.engine.IsEmailVerified(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, verified)

	// The code was consumed; replaying it reads as expired.
	require.ErrorIs(t, fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", code), ErrOTPExpired)

	snap := fx.engine.MetricsSnapshot().Counters
	require.Equal(t, uint64(1), snap[MetricOTPConfirmSuccess])
	require.Equal(t, uint64(2), snap[MetricOTPConfirmFailure])
}

func TestEngineConfirmEmailOTPAttemptCap(t *testing.T) {
	fx := newTestEngine(t, func(cfg *Config) {
		cfg.OTP.MaxAttempts = 3
	})
	ctx := context.Background()

	code, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", "000000"), ErrOTPMismatch)
	}

	require.ErrorIs(t, fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", code), ErrOTPAttemptsExceeded)

	verified, err := fx.engine.IsEmailVerified(ctx, "alice@example.com")
	require.NoError(t, err)
	require.False(t, verified)

	require.Equal(t, uint64(1), fx.engine.MetricsSnapshot().Counters[MetricOTPAttemptsExceeded])
}

func TestEngineOTPStoreOutage(t *testing.T) {
	fx := newTestEngine(t, nil)
	ctx := context.Background()

	fx.mr.Close()

	_, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.ErrorIs(t, err, ErrStoreUnavailable)

	err = fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", "123456")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.NotErrorIs(t, err, ErrOTPMismatch, "outage must not read as a wrong code")
}
