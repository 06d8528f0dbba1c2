package lockout

import (
	"testing"
	"time"
)

func TestIsLocked(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	if IsLocked(nil, now) {
		t.Fatal("nil window must not lock")
	}
	if !IsLocked(&future, now) {
		t.Fatal("future deadline must lock")
	}
	if IsLocked(&past, now) {
		t.Fatal("elapsed deadline must not lock")
	}
}

func TestOnFailureBelowThreshold(t *testing.T) {
	now := time.Now()
	out := OnFailure(2, nil, now, DefaultMaxAttempts, DefaultLockoutDuration)
	if out.Attempts != 3 {
		t.Fatalf("attempts: got %d, want 3", out.Attempts)
	}
	if out.Locked || out.LockedUntil != nil {
		t.Fatal("below threshold must not lock")
	}
}

func TestOnFailureReachesThreshold(t *testing.T) {
	now := time.Now()
	out := OnFailure(DefaultMaxAttempts-1, nil, now, DefaultMaxAttempts, DefaultLockoutDuration)
	if out.Attempts != DefaultMaxAttempts {
		t.Fatalf("attempts: got %d, want %d", out.Attempts, DefaultMaxAttempts)
	}
	if !out.Locked || out.LockedUntil == nil {
		t.Fatal("reaching the threshold must start a window")
	}
	if want := now.Add(DefaultLockoutDuration); !out.LockedUntil.Equal(want) {
		t.Fatalf("window end: got %v, want %v", out.LockedUntil, want)
	}
}

func TestOnFailureCarriesStaleWindow(t *testing.T) {
	now := time.Now()
	stale := now.Add(-time.Hour)
	out := OnFailure(0, &stale, now, DefaultMaxAttempts, DefaultLockoutDuration)
	if out.Locked {
		t.Fatal("first failure must not lock")
	}
	if out.LockedUntil == nil || !out.LockedUntil.Equal(stale) {
		t.Fatal("a stale window is carried through unchanged below the threshold")
	}
}

func TestOnSuccessClearsEverything(t *testing.T) {
	now := time.Now()
	out := OnSuccess(now)
	if out.Attempts != 0 || out.LockedUntil != nil {
		t.Fatal("success must clear the counters")
	}
	if !out.LastLoginAt.Equal(now) {
		t.Fatalf("login time: got %v, want %v", out.LastLoginAt, now)
	}
}
