package streamauth

import "sync/atomic"

// MetricID indexes one engine counter.
type MetricID uint16

const (
	// MetricOTPIssued counts successful OTP issuances.
	MetricOTPIssued MetricID = iota
	// MetricOTPCooldownRejected counts issuances rejected by the cooldown.
	MetricOTPCooldownRejected
	// MetricOTPConfirmSuccess counts OTP validations that matched.
	MetricOTPConfirmSuccess
	// MetricOTPConfirmFailure counts mismatches and expired lookups.
	MetricOTPConfirmFailure
	// MetricOTPAttemptsExceeded counts validations rejected at the cap.
	MetricOTPAttemptsExceeded
	// MetricResetRequested counts issued password-reset tokens.
	MetricResetRequested
	// MetricResetConfirmSuccess counts completed password resets.
	MetricResetConfirmSuccess
	// MetricResetConfirmFailure counts rejected reset confirmations.
	MetricResetConfirmFailure
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations rejected as duplicates.
	MetricRegisterDuplicate
	// MetricTokenRevoked counts blacklist insertions.
	MetricTokenRevoked
	// MetricBlacklistHit counts membership queries that found an entry.
	MetricBlacklistHit
	// MetricNotificationFailure counts outbound mail failures.
	MetricNotificationFailure
	// MetricStoreUnavailable counts operations aborted by store outages.
	MetricStoreUnavailable
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed-size, lock-free counter registry. A nil or disabled
// registry accepts increments and reports zeros.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
