// Package lockout is the pure brute-force policy: it evaluates failed-attempt
// counters and lockout timestamps against the configured thresholds and never
// performs I/O. Persisting the outcome is the caller's job.
package lockout

import "time"

const (
	// DefaultMaxAttempts is the consecutive-failure threshold.
	DefaultMaxAttempts = 5
	// DefaultLockoutDuration is the refusal window after the threshold.
	DefaultLockoutDuration = 15 * time.Minute
	// DefaultTokenExpiry bounds verification and reset challenges.
	DefaultTokenExpiry = 24 * time.Hour
)

// IsLocked reports whether a lockout window is in effect at now. A window
// whose deadline has passed no longer locks; the stale timestamp is cleared
// by the next successful login or password reset.
func IsLocked(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && now.Before(*lockedUntil)
}

// FailureOutcome is the counter state after one more failed attempt.
type FailureOutcome struct {
	Attempts    int
	LockedUntil *time.Time
	// Locked is true when this attempt reached the threshold and started a
	// new lockout window.
	Locked bool
}

// OnFailure increments the counter and, iff the new count reaches
// maxAttempts, stamps a lockout window of duration starting at now.
// An existing locked_until outside that case is carried through unchanged.
func OnFailure(attempts int, lockedUntil *time.Time, now time.Time, maxAttempts int, duration time.Duration) FailureOutcome {
	out := FailureOutcome{
		Attempts:    attempts + 1,
		LockedUntil: lockedUntil,
	}
	if out.Attempts >= maxAttempts {
		until := now.Add(duration)
		out.LockedUntil = &until
		out.Locked = true
	}
	return out
}

// SuccessOutcome is the counter state after a successful authentication.
type SuccessOutcome struct {
	Attempts    int
	LockedUntil *time.Time
	LastLoginAt time.Time
}

// OnSuccess resets the counter, clears any lockout, and stamps the login
// time.
func OnSuccess(now time.Time) SuccessOutcome {
	return SuccessOutcome{Attempts: 0, LockedUntil: nil, LastLoginAt: now}
}
