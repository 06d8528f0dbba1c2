package auth

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterCreatesUnverifiedUserWithChallenge(t *testing.T) {
	engine, st, _, _ := newTestEngine(t)
	ctx := context.Background()

	res := engine.Register(ctx, RegisterRequest{
		Email:           "Alice@Example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		FirstName:       "Alice",
		LastName:        "Smith",
	})
	if res.Failed() {
		t.Fatalf("register failed: %v (%s)", res.Err, res.Message)
	}
	if res.Data["email"] != "alice@example.com" {
		t.Fatalf("expected normalized email in result, got %q", res.Data["email"])
	}
	if res.Data["verification_code"] == "" || res.Data["verification_token"] == "" {
		t.Fatal("development mode should expose the challenge")
	}

	user := st.userByEmail(t, "alice@example.com")
	if user.EmailVerified {
		t.Fatal("new user must start unverified")
	}
	if !user.IsActive {
		t.Fatal("new user must start active")
	}
	if user.PasswordHash == "correct-horse" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if user.EmailVerificationToken == nil {
		t.Fatal("verification token should be denormalized onto the user")
	}
}

func TestRegisterValidation(t *testing.T) {
	engine, st, _, _ := newTestEngine(t)
	ctx := context.Background()

	res := engine.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "x", ConfirmPassword: "y"})
	if !errors.Is(res.Err, ErrValidation) {
		t.Fatalf("mismatched passwords: want ErrValidation, got %v", res.Err)
	}
	// Validation runs before any write: no user row may exist.
	if _, err := st.FindUserByEmail(ctx, "a@b.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected registration must not create a user, got %v", err)
	}

	res = engine.Register(ctx, RegisterRequest{Email: "", Password: "x", ConfirmPassword: "x"})
	if !errors.Is(res.Err, ErrValidation) {
		t.Fatalf("empty email: want ErrValidation, got %v", res.Err)
	}
}

func TestRegisterRejectsVerifiedDuplicate(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	registerAndVerify(t, engine, "bob@example.com", "hunter2hunter2")

	res := engine.Register(ctx, RegisterRequest{
		Email: "bob@example.com", Password: "other-pass", ConfirmPassword: "other-pass",
	})
	if !errors.Is(res.Err, ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", res.Err)
	}
}

func TestRegisterReplacesStaleUnverifiedAccount(t *testing.T) {
	engine, st, _, _ := newTestEngine(t)
	ctx := context.Background()

	first := engine.Register(ctx, RegisterRequest{
		Email: "carol@example.com", Password: "first-pass", ConfirmPassword: "first-pass",
	})
	if first.Failed() {
		t.Fatalf("first register failed: %v", first.Err)
	}
	firstID := st.userByEmail(t, "carol@example.com").ID

	second := engine.Register(ctx, RegisterRequest{
		Email: "carol@example.com", Password: "second-pass", ConfirmPassword: "second-pass",
	})
	if second.Failed() {
		t.Fatalf("re-register of unverified account failed: %v", second.Err)
	}
	secondID := st.userByEmail(t, "carol@example.com").ID
	if firstID == secondID {
		t.Fatal("re-registration must replace the stale row")
	}

	// Only the fresh challenge may verify the account.
	if res := engine.VerifyEmail(ctx, "carol@example.com", first.Data["verification_code"]); !res.Failed() {
		t.Fatal("challenge from the replaced registration should be dead")
	}
	if res := engine.VerifyEmail(ctx, "carol@example.com", second.Data["verification_code"]); res.Failed() {
		t.Fatalf("fresh challenge rejected: %v (%s)", res.Err, res.Message)
	}
}

func TestRegisterCleansUpWhenChallengeInsertFails(t *testing.T) {
	engine, st, _, _ := newTestEngine(t)
	ctx := context.Background()

	st.failInsertEmailVerification = true
	res := engine.Register(ctx, RegisterRequest{
		Email: "dave@example.com", Password: "some-pass", ConfirmPassword: "some-pass",
	})
	if !res.Failed() {
		t.Fatal("register should fail when the challenge cannot be stored")
	}
	if _, err := st.FindUserByEmail(ctx, "dave@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatal("unverifiable account should be removed")
	}

	// The email is free again once the store recovers.
	st.failInsertEmailVerification = false
	if res := engine.Register(ctx, RegisterRequest{
		Email: "dave@example.com", Password: "some-pass", ConfirmPassword: "some-pass",
	}); res.Failed() {
		t.Fatalf("retry after cleanup failed: %v", res.Err)
	}
}
