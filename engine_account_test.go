package streamauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineRegisterNewUser(t *testing.T) {
	fx := newTestEngine(t, nil)
	ctx := context.Background()

	saved, err := fx.engine.Register(ctx, RegisterInput{
		Name:     "Alice",
		UserName: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.UserID)
	require.Equal(t, RoleUser, saved.Role)
	require.True(t, saved.Enabled)
	require.Equal(t, "hashed:s3cret-pass", saved.PasswordHash)

	require.Equal(t, uint64(1), fx.engine.MetricsSnapshot().Counters[MetricRegisterSuccess])
}

func TestEngineRegisterRejectsEnabledDuplicate(t *testing.T) {
	fx := newTestEngine(t, nil, seedAlice())
	ctx := context.Background()

	_, err := fx.engine.Register(ctx, RegisterInput{
		Name:     "Mallory",
		UserName: "mallory",
		Email:    "alice@example.com",
		Password: "hostile-pass",
	})
	require.ErrorIs(t, err, ErrUserExists)

	// The established account is untouched.
	require.Equal(t, "hashed:old-password", fx.users.hash(t, "alice@example.com"))
	require.Equal(t, uint64(1), fx.engine.MetricsSnapshot().Counters[MetricRegisterDuplicate])
}

func TestEngineRegisterOverwritesDisabledAccount(t *testing.T) {
	stale := seedAlice()
	stale.Enabled = false
	fx := newTestEngine(t, nil, stale)
	ctx := context.Background()

	// Leave stale OTP state behind, as an abandoned registration would.
	_, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)

	saved, err := fx.engine.Register(ctx, RegisterInput{
		Name:     "Alice",
		UserName: "alice2",
		Email:    "alice@example.com",
		Password: "fresh-pass",
	})
	require.NoError(t, err)
	require.True(t, saved.Enabled)
	require.Equal(t, "alice2", saved.UserName)
	require.Equal(t, "hashed:fresh-pass", saved.PasswordHash)

	// Every OTP artifact was cleared, so issuance starts from scratch with
	// no cooldown carried over from the abandoned attempt.
	_, err = fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)
}

func TestEngineRegisterRequiresVerifiedEmail(t *testing.T) {
	fx := newTestEngine(t, func(cfg *Config) {
		cfg.Account.RequireVerifiedEmail = true
	})
	ctx := context.Background()

	input := RegisterInput{
		Name:     "Alice",
		UserName: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	}

	_, err := fx.engine.Register(ctx, input)
	require.ErrorIs(t, err, ErrEmailNotVerified)

	code, err := fx.engine.RequestEmailOTP(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, fx.engine.ConfirmEmailOTP(ctx, "alice@example.com", code))

	saved, err := fx.engine.Register(ctx, input)
	require.NoError(t, err)
	require.True(t, saved.Enabled)
}

func TestEngineRegisterValidatesInput(t *testing.T) {
	fx := newTestEngine(t, nil)
	ctx := context.Background()

	for _, input := range []RegisterInput{
		{UserName: "alice", Password: "s3cret-pass"},
		{Email: "alice@example.com", Password: "s3cret-pass"},
		{Email: "alice@example.com", UserName: "alice"},
	} {
		_, err := fx.engine.Register(ctx, input)
		require.Error(t, err)
	}
}
