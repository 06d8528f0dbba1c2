package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	auth "github.com/yusufloop/icsboltz-auth"
)

func seedUser(t *testing.T, s *Store, id, email string) *auth.User {
	t.Helper()
	u := &auth.User{ID: id, Email: email, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.InsertUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestUserLookupsAndNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "u1", "alice@example.com")

	if _, err := s.FindUserByEmail(ctx, "ALICE@example.com"); err != nil {
		t.Fatalf("email lookup should be case-insensitive: %v", err)
	}
	if _, err := s.FindUserByEmail(ctx, "ghost@example.com"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := s.FindUserByID(ctx, "nope"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestResultsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "u1", "alice@example.com")

	got, err := s.FindUserByID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	got.Email = "mutated@example.com"

	again, err := s.FindUserByID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Email != "alice@example.com" {
		t.Fatal("mutating a returned record must not affect the store")
	}
}

func TestInsertUserRejectsDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "u1", "alice@example.com")

	err := s.InsertUser(ctx, &auth.User{ID: "u2", Email: "ALICE@example.com"})
	if err == nil {
		t.Fatal("duplicate email accepted")
	}
}

func TestVerificationNewestUnconsumedWins(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Now()

	old := &auth.EmailVerification{ID: "v1", UserID: "u1", Email: "a@b.com", Code: "AAAAAA", CreatedAt: base}
	fresh := &auth.EmailVerification{ID: "v2", UserID: "u1", Email: "a@b.com", Code: "AAAAAA", CreatedAt: base.Add(time.Minute)}
	for _, v := range []*auth.EmailVerification{old, fresh} {
		if err := s.InsertEmailVerification(ctx, v); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.FindEmailVerification(ctx, "a@b.com", "aaaaaa")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "v2" {
		t.Fatalf("want newest row v2, got %s", got.ID)
	}

	if err := s.MarkEmailVerificationVerified(ctx, "v2", time.Now()); err != nil {
		t.Fatal(err)
	}
	got, err = s.FindEmailVerification(ctx, "a@b.com", "AAAAAA")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "v1" {
		t.Fatalf("consumed rows must be skipped, got %s", got.ID)
	}

	// Marking a consumed row again is a miss.
	if err := s.MarkEmailVerificationVerified(ctx, "v2", time.Now()); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestIncrementAttemptsTargetsNewestRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Now()

	if err := s.InsertEmailVerification(ctx, &auth.EmailVerification{ID: "v1", Email: "a@b.com", Code: "AAAAAA", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertEmailVerification(ctx, &auth.EmailVerification{ID: "v2", Email: "a@b.com", Code: "BBBBBB", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}

	n, err := s.IncrementEmailVerificationAttempts(ctx, "a@b.com")
	if err != nil || n != 1 {
		t.Fatalf("got n=%d err=%v, want 1", n, err)
	}
	fresh, err := s.FindEmailVerification(ctx, "a@b.com", "BBBBBB")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Attempts != 1 {
		t.Fatalf("newest row attempts: got %d, want 1", fresh.Attempts)
	}

	// No outstanding rows: the counter reports 0 instead of failing.
	n, err = s.IncrementEmailVerificationAttempts(ctx, "nobody@b.com")
	if err != nil || n != 0 {
		t.Fatalf("got n=%d err=%v, want 0", n, err)
	}
}

func TestPasswordResetSingleUseSemantics(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := &auth.PasswordReset{ID: "r1", UserID: "u1", Email: "a@b.com", Token: "tok-1", Code: "CCCCCC", CreatedAt: time.Now()}
	if err := s.InsertPasswordReset(ctx, r); err != nil {
		t.Fatal(err)
	}

	if _, err := s.FindPasswordReset(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FindPasswordResetByCode(ctx, "a@b.com", "cccccc"); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkPasswordResetUsed(ctx, "r1", time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FindPasswordReset(ctx, "tok-1"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("consumed token must be a miss, got %v", err)
	}
	if err := s.MarkPasswordResetUsed(ctx, "r1", time.Now()); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("double consume must be a miss, got %v", err)
	}
}

func TestContextCancellationIsHonored(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.FindUserByEmail(ctx, "a@b.com"); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if err := s.InsertUser(ctx, &auth.User{ID: "u1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
