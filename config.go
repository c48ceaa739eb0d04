package streamauth

import (
	"errors"
	"time"
)

// Config carries every policy constant of the engine. The values are
// configuration, not contract: deployments tune them, but Validate enforces
// the orderings the credential state machine depends on.
type Config struct {
	OTP     OTPConfig
	Reset   ResetConfig
	Account AccountConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// OTPConfig controls one-time passcode issuance and validation.
type OTPConfig struct {
	// Digits is the fixed width of generated codes.
	Digits int
	// CodeTTL is the validity window of a stored code. The attempt counter
	// is created with the same window.
	CodeTTL time.Duration
	// Cooldown blocks reissuance for the same identity. Must be shorter
	// than CodeTTL.
	Cooldown time.Duration
	// MaxAttempts caps failed validations before the code is destroyed.
	MaxAttempts int
	// VerifiedTTL is how long a successful confirmation marks the identity
	// as verified for registration purposes.
	VerifiedTTL time.Duration
}

// ResetConfig controls password-reset tokens.
type ResetConfig struct {
	// TokenTTL is the validity window of an issued reset token.
	TokenTTL time.Duration
}

// AccountConfig controls registration behavior.
type AccountConfig struct {
	// RequireVerifiedEmail makes Register demand a live verification marker
	// (set by a successful OTP confirmation) for the email address.
	RequireVerifiedEmail bool
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the request path when the
	// buffer is saturated. Drops are counted and observable.
	DropIfFull bool
}

// MetricsConfig controls the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			Digits:      6,
			CodeTTL:     5 * time.Minute,
			Cooldown:    60 * time.Second,
			MaxAttempts: 5,
			VerifiedTTL: 24 * time.Hour,
		},
		Reset: ResetConfig{
			TokenTTL: 30 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate rejects configurations that would break the credential state
// machine rather than merely tune it.
func (c Config) Validate() error {
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return errors.New("otp digits must be between 4 and 10")
	}
	if c.OTP.CodeTTL <= 0 {
		return errors.New("otp code ttl must be positive")
	}
	if c.OTP.Cooldown <= 0 {
		return errors.New("otp cooldown must be positive")
	}
	if c.OTP.Cooldown >= c.OTP.CodeTTL {
		return errors.New("otp cooldown must be shorter than code ttl")
	}
	if c.OTP.MaxAttempts < 1 {
		return errors.New("otp max attempts must be at least 1")
	}
	if c.OTP.VerifiedTTL <= 0 {
		return errors.New("otp verified ttl must be positive")
	}
	if c.Reset.TokenTTL <= 0 {
		return errors.New("reset token ttl must be positive")
	}
	return nil
}
