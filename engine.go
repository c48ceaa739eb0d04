package streamauth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/robspecs/streamauth/kv"
)

// Engine composes the OTP manager, the reset-token store, the token
// blacklist, and the collaborator interfaces into the credential flows.
//
// An Engine is stateless aside from the shared store; all methods are safe
// for unbounded concurrent invocation after [Builder.Build].
type Engine struct {
	config    Config
	store     kv.Store
	otp       *otpManager
	resets    *resetTokenStore
	blacklist *tokenBlacklist
	users     UserProvider
	mailer    Mailer
	hasher    PasswordHasher
	audit     *auditDispatcher
	metrics   *Metrics
	logger    *zap.Logger
}

// Close drains and stops the audit dispatcher. It does not close the
// backing store or Redis client, which the caller owns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// mapStoreErr translates transport failures into ErrStoreUnavailable while
// leaving domain errors untouched. Infrastructure trouble must never read
// as "code invalid" or "token invalid".
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kv.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
