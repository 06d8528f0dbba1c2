// Package metrics is a lock-free counter registry for flow outcomes.
// Counters are fixed at compile time; exporters read point-in-time
// snapshots.
package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginLockout
	MetricRegistrationSuccess
	MetricRegistrationDuplicate
	MetricVerificationRequest
	MetricVerificationSuccess
	MetricVerificationFailure
	MetricVerificationAttemptsExceeded
	MetricResetRequest
	MetricResetSuccess
	MetricResetFailure
	MetricResetAttemptsExceeded
	MetricSessionCreated
	MetricSessionDestroyed
	MetricBootstrapAuthenticated
	MetricBootstrapUnauthenticated

	MetricIDCount
)

// Config controls whether counting is active.
type Config struct {
	Enabled bool
}

// Metrics holds the counters. A nil or disabled instance no-ops.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a registry per the config.
func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the counter. Out-of-range IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot deep-copies all counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
