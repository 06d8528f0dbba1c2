package auth

import (
	"context"
	"testing"
)

func TestFlowCountersTrackOutcomes(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, func(cfg *Config) {
		cfg.Metrics.Enabled = true
	})
	ctx := context.Background()

	registerAndVerify(t, engine, "alice@example.com", "right-pass-123")
	engine.Login(ctx, "alice@example.com", "wrong-pass")
	res := engine.Login(ctx, "alice@example.com", "right-pass-123")
	if res.Failed() {
		t.Fatalf("login failed: %v", res.Err)
	}
	engine.Logout(ctx, res.Data["session_token"])
	engine.Bootstrap(ctx, "garbage")

	snap := engine.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricRegistrationSuccess:      1,
		MetricVerificationRequest:      1,
		MetricVerificationSuccess:      1,
		MetricLoginFailure:             1,
		MetricLoginSuccess:             1,
		MetricSessionCreated:           1,
		MetricSessionDestroyed:         1,
		MetricBootstrapUnauthenticated: 1,
	}
	for id, expected := range want {
		if got := snap.Counters[id]; got != expected {
			t.Errorf("counter %d: got %d, want %d", id, got, expected)
		}
	}
}

func TestLockoutCounter(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, func(cfg *Config) {
		cfg.Metrics.Enabled = true
	})
	ctx := context.Background()
	registerAndVerify(t, engine, "bob@example.com", "right-pass-123")

	for i := 0; i < engine.config.Security.MaxLoginAttempts; i++ {
		engine.Login(ctx, "bob@example.com", "wrong-pass")
	}
	engine.Login(ctx, "bob@example.com", "right-pass-123")

	snap := engine.MetricsSnapshot()
	// The final failed attempt triggers the lock; the follow-up login is
	// refused by the open window. Both land on the lockout counter.
	if got := snap.Counters[MetricLoginLockout]; got != 2 {
		t.Fatalf("lockout counter: got %d, want 2", got)
	}
	if got := snap.Counters[MetricLoginFailure]; got != uint64(engine.config.Security.MaxLoginAttempts-1) {
		t.Fatalf("failure counter: got %d, want %d", got, engine.config.Security.MaxLoginAttempts-1)
	}
}

func TestMetricsDisabledSnapshotIsZero(t *testing.T) {
	engine, _, _, _ := newTestEngine(t) // metrics disabled in the base config
	registerAndVerify(t, engine, "carol@example.com", "right-pass-123")

	snap := engine.MetricsSnapshot()
	for id, v := range snap.Counters {
		if v != 0 {
			t.Fatalf("counter %d must stay 0 when metrics are disabled, got %d", id, v)
		}
	}
}
