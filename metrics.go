package auth

import internalmetrics "github.com/yusufloop/icsboltz-auth/internal/metrics"

// MetricID identifies a flow-outcome counter.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected logins of every kind.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginLockout counts logins refused by an active lockout window.
	MetricLoginLockout = internalmetrics.MetricLoginLockout
	// MetricRegistrationSuccess counts created accounts.
	MetricRegistrationSuccess = internalmetrics.MetricRegistrationSuccess
	// MetricRegistrationDuplicate counts registrations rejected for an
	// existing verified email.
	MetricRegistrationDuplicate = internalmetrics.MetricRegistrationDuplicate
	// MetricVerificationRequest counts issued verification challenges.
	MetricVerificationRequest = internalmetrics.MetricVerificationRequest
	// MetricVerificationSuccess counts confirmed email verifications.
	MetricVerificationSuccess = internalmetrics.MetricVerificationSuccess
	// MetricVerificationFailure counts failed verification confirms.
	MetricVerificationFailure = internalmetrics.MetricVerificationFailure
	// MetricVerificationAttemptsExceeded counts challenges that hit the
	// attempt ceiling.
	MetricVerificationAttemptsExceeded = internalmetrics.MetricVerificationAttemptsExceeded
	// MetricResetRequest counts issued password-reset challenges.
	MetricResetRequest = internalmetrics.MetricResetRequest
	// MetricResetSuccess counts completed password resets.
	MetricResetSuccess = internalmetrics.MetricResetSuccess
	// MetricResetFailure counts failed reset confirms.
	MetricResetFailure = internalmetrics.MetricResetFailure
	// MetricResetAttemptsExceeded counts reset challenges that hit the
	// attempt ceiling.
	MetricResetAttemptsExceeded = internalmetrics.MetricResetAttemptsExceeded
	// MetricSessionCreated counts sessions issued at login.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionDestroyed counts explicit logouts.
	MetricSessionDestroyed = internalmetrics.MetricSessionDestroyed
	// MetricBootstrapAuthenticated counts process starts that resolved a
	// live session.
	MetricBootstrapAuthenticated = internalmetrics.MetricBootstrapAuthenticated
	// MetricBootstrapUnauthenticated counts process starts without one.
	MetricBootstrapUnauthenticated = internalmetrics.MetricBootstrapUnauthenticated
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
