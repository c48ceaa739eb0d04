package streamauth

import (
	"context"
	"errors"
	"fmt"
)

// Register creates an account for input.Email.
//
// An enabled account with the same email rejects the attempt with
// [ErrUserExists]. A matching but disabled (unverified) account is
// overwritten: registration proceeds after clearing every stale OTP
// artifact for the address — code, attempt counter, cooldown marker, and
// verification flag — exactly as if the address had never been touched.
//
// With Account.RequireVerifiedEmail set, registration additionally demands
// a live verification marker from [Engine.ConfirmEmailOTP] and fails with
// [ErrEmailNotVerified] otherwise.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (UserRecord, error) {
	if e == nil || e.users == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	if input.Email == "" || input.UserName == "" || input.Password == "" {
		return UserRecord{}, errors.New("email, username and password are required")
	}

	exists, err := e.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return UserRecord{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		existing, found, err := e.users.GetByEmail(ctx, input.Email)
		if err != nil {
			return UserRecord{}, fmt.Errorf("load existing user: %w", err)
		}
		if found && existing.Enabled {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, input.Email, ErrUserExists, nil)
			return UserRecord{}, ErrUserExists
		}
		// Disabled leftover from an abandoned registration: overwrite it.
		e.emitAudit(ctx, auditEventRegisterOverwrite, true, input.Email, nil, nil)
	}

	if e.config.Account.RequireVerifiedEmail {
		verified, err := e.otp.IsVerified(ctx, input.Email)
		if err != nil {
			err = mapStoreErr(err)
			if errors.Is(err, ErrStoreUnavailable) {
				e.metricInc(MetricStoreUnavailable)
			}
			return UserRecord{}, err
		}
		if !verified {
			e.emitAudit(ctx, auditEventRegisterFailure, false, input.Email, ErrEmailNotVerified, nil)
			return UserRecord{}, ErrEmailNotVerified
		}
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	if err := e.otp.Clear(ctx, input.Email); err != nil {
		err = mapStoreErr(err)
		if errors.Is(err, ErrStoreUnavailable) {
			e.metricInc(MetricStoreUnavailable)
		}
		return UserRecord{}, err
	}

	saved, err := e.users.Save(ctx, UserRecord{
		Name:         input.Name,
		UserName:     input.UserName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         RoleUser,
		Enabled:      true,
	})
	if err != nil {
		return UserRecord{}, fmt.Errorf("save user: %w", err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, saved.Email, nil, nil)

	return saved, nil
}
