package streamauth

import (
	"context"
	"crypto/subtle"
	"strconv"

	"github.com/robspecs/streamauth/internal"
	"github.com/robspecs/streamauth/kv"
)

// Key prefixes for the OTP artifact family. The code, its attempt counter,
// its cooldown marker, and the verified flag are logically distinct records
// with independent expiries.
const (
	otpCodeKeyPrefix     = "ao"
	otpAttemptsKeyPrefix = "aoa"
	otpCooldownKeyPrefix = "aoc"
	otpVerifiedKeyPrefix = "aov"
)

// otpManager issues and validates one-time passcodes per identity.
// Identities are opaque strings; any normalization (e.g. email
// case-folding) is the caller's responsibility.
type otpManager struct {
	store kv.Store
	cfg   OTPConfig
}

func newOTPManager(store kv.Store, cfg OTPConfig) *otpManager {
	return &otpManager{store: store, cfg: cfg}
}

func otpCodeKey(identity string) string     { return otpCodeKeyPrefix + ":" + identity }
func otpAttemptsKey(identity string) string { return otpAttemptsKeyPrefix + ":" + identity }
func otpCooldownKey(identity string) string { return otpCooldownKeyPrefix + ":" + identity }
func otpVerifiedKey(identity string) string { return otpVerifiedKeyPrefix + ":" + identity }

// Issue generates and stores a fresh code for identity, replacing any
// previous one. It returns ErrOTPCooldownActive while the cooldown marker
// from the last issuance is alive. On success the code, a zeroed attempt
// counter, and a new cooldown marker are durable in the store before the
// code is returned to the caller for dispatch.
func (m *otpManager) Issue(ctx context.Context, identity string) (string, error) {
	active, err := m.store.Exists(ctx, otpCooldownKey(identity))
	if err != nil {
		return "", err
	}
	if active {
		return "", ErrOTPCooldownActive
	}

	code, err := internal.NewOTP(m.cfg.Digits)
	if err != nil {
		return "", err
	}

	if err := m.store.Set(ctx, otpCodeKey(identity), code, m.cfg.CodeTTL); err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, otpAttemptsKey(identity), "0", m.cfg.CodeTTL); err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, otpCooldownKey(identity), "1", m.cfg.Cooldown); err != nil {
		return "", err
	}

	return code, nil
}

// Validate checks submitted against the stored code for identity.
//
// Absence of a stored code returns ErrOTPExpired. Once the attempt counter
// has reached the cap the stored code is destroyed and
// ErrOTPAttemptsExceeded is returned without comparing the submission, so
// a later guess with the correct code still fails. A mismatch increments
// the counter atomically in the store and returns (false, nil). A match
// deletes the code, the counter, and the cooldown marker — successful use
// ends the cooldown early — and returns (true, nil).
func (m *otpManager) Validate(ctx context.Context, identity, submitted string) (bool, error) {
	code, ok, err := m.store.Get(ctx, otpCodeKey(identity))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrOTPExpired
	}

	attempts, err := m.attemptCount(ctx, identity)
	if err != nil {
		return false, err
	}
	if attempts >= int64(m.cfg.MaxAttempts) {
		// Force re-issuance: the code is burned regardless of what the
		// caller submitted.
		if err := m.store.Delete(ctx, otpCodeKey(identity), otpAttemptsKey(identity)); err != nil {
			return false, err
		}
		return false, ErrOTPAttemptsExceeded
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(submitted)) != 1 {
		if _, err := m.store.IncrementWithTTL(ctx, otpAttemptsKey(identity), m.cfg.CodeTTL); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := m.store.Delete(ctx,
		otpCodeKey(identity),
		otpAttemptsKey(identity),
		otpCooldownKey(identity),
	); err != nil {
		return false, err
	}

	return true, nil
}

// MarkVerified records that identity completed OTP confirmation. The
// marker outlives the code so registration can check it later.
func (m *otpManager) MarkVerified(ctx context.Context, identity string) error {
	return m.store.Set(ctx, otpVerifiedKey(identity), "true", m.cfg.VerifiedTTL)
}

// IsVerified reports whether a live verification marker exists.
func (m *otpManager) IsVerified(ctx context.Context, identity string) (bool, error) {
	return m.store.Exists(ctx, otpVerifiedKey(identity))
}

// Clear removes every OTP artifact for identity: code, attempt counter,
// cooldown marker, and verified flag. Registration calls this when
// overwriting a stale disabled account.
func (m *otpManager) Clear(ctx context.Context, identity string) error {
	return m.store.Delete(ctx,
		otpCodeKey(identity),
		otpAttemptsKey(identity),
		otpCooldownKey(identity),
		otpVerifiedKey(identity),
	)
}

func (m *otpManager) attemptCount(ctx context.Context, identity string) (int64, error) {
	raw, ok, err := m.store.Get(ctx, otpAttemptsKey(identity))
	if err != nil {
		return 0, err
	}
	if !ok {
		// Counter expired independently of the code; treat as zero rather
		// than rejecting a still-valid code.
		return 0, nil
	}

	attempts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return attempts, nil
}
