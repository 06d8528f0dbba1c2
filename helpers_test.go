package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeStore is the in-memory Store used by the flow tests. It mirrors the
// lookup semantics the interface documents: ErrNotFound for misses, only
// unconsumed challenge rows, newest first.
type fakeStore struct {
	mu            sync.Mutex
	users         map[string]*User
	verifications map[string]*EmailVerification
	resets        map[string]*PasswordReset

	failUpdateUser              bool
	failInsertEmailVerification bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[string]*User{},
		verifications: map[string]*EmailVerification{},
		resets:        map[string]*PasswordReset{},
	}
}

func (s *fakeStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
}

func (s *fakeStore) FindUserByID(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (s *fakeStore) InsertUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *fakeStore) UpdateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdateUser {
		return fmt.Errorf("update user: forced failure")
	}
	if _, ok := s.users[u.ID]; !ok {
		return fmt.Errorf("user %q: %w", u.ID, ErrNotFound)
	}
	c := *u
	s.users[u.ID] = &c
	return nil
}

func (s *fakeStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *fakeStore) InsertEmailVerification(_ context.Context, v *EmailVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsertEmailVerification {
		return fmt.Errorf("insert verification: forced failure")
	}
	c := *v
	s.verifications[v.ID] = &c
	return nil
}

func (s *fakeStore) FindEmailVerification(_ context.Context, email, code string) (*EmailVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []*EmailVerification
	for _, v := range s.verifications {
		if v.VerifiedAt == nil && strings.EqualFold(v.Email, email) && strings.EqualFold(v.Code, code) {
			found = append(found, v)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("verification for %q: %w", email, ErrNotFound)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	c := *found[0]
	return &c, nil
}

func (s *fakeStore) MarkEmailVerificationVerified(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verifications[id]
	if !ok || v.VerifiedAt != nil {
		return fmt.Errorf("verification %q: %w", id, ErrNotFound)
	}
	v.VerifiedAt = &at
	return nil
}

func (s *fakeStore) IncrementEmailVerificationAttempts(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *EmailVerification
	for _, v := range s.verifications {
		if v.VerifiedAt != nil || !strings.EqualFold(v.Email, email) {
			continue
		}
		if newest == nil || v.CreatedAt.After(newest.CreatedAt) {
			newest = v
		}
	}
	if newest == nil {
		return 0, nil
	}
	newest.Attempts++
	return newest.Attempts, nil
}

func (s *fakeStore) InsertPasswordReset(_ context.Context, r *PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.resets[r.ID] = &c
	return nil
}

func (s *fakeStore) FindPasswordReset(_ context.Context, token string) (*PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.resets {
		if r.UsedAt == nil && r.Token == token {
			c := *r
			return &c, nil
		}
	}
	return nil, fmt.Errorf("password reset: %w", ErrNotFound)
}

func (s *fakeStore) FindPasswordResetByCode(_ context.Context, email, code string) (*PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []*PasswordReset
	for _, r := range s.resets {
		if r.UsedAt == nil && strings.EqualFold(r.Email, email) && strings.EqualFold(r.Code, code) {
			found = append(found, r)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("password reset for %q: %w", email, ErrNotFound)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	c := *found[0]
	return &c, nil
}

func (s *fakeStore) MarkPasswordResetUsed(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[id]
	if !ok || r.UsedAt != nil {
		return fmt.Errorf("password reset %q: %w", id, ErrNotFound)
	}
	r.UsedAt = &at
	return nil
}

func (s *fakeStore) IncrementPasswordResetAttempts(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *PasswordReset
	for _, r := range s.resets {
		if r.UsedAt != nil || !strings.EqualFold(r.Email, email) {
			continue
		}
		if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	if newest == nil {
		return 0, nil
	}
	newest.Attempts++
	return newest.Attempts, nil
}

func (s *fakeStore) userByEmail(t *testing.T, email string) *User {
	t.Helper()
	u, err := s.FindUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("user %q not in store: %v", email, err)
	}
	return u
}

func testConfig() Config {
	cfg := Config{DevelopmentMode: true}
	cfg.Password.Cost = bcrypt.MinCost
	cfg.Security.EnumerationDelay = time.Millisecond
	cfg.JWT.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func newTestEngine(t *testing.T, mutate ...func(*Config)) (*Engine, *fakeStore, *miniredis.Miniredis, *testClock) {
	t.Helper()
	mr, rdb := newTestRedis(t)
	st := newFakeStore()
	cfg := testConfig()
	for _, fn := range mutate {
		fn(&cfg)
	}
	engine, err := New().WithConfig(cfg).WithStore(st).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	clock := newTestClock()
	engine.now = clock.Now
	return engine, st, mr, clock
}

// registerAndVerify walks a user through registration and verification so
// flow tests can start from a loginable account.
func registerAndVerify(t *testing.T, e *Engine, email, pass string) {
	t.Helper()
	ctx := context.Background()

	res := e.Register(ctx, RegisterRequest{Email: email, Password: pass, ConfirmPassword: pass})
	if res.Failed() {
		t.Fatalf("register: %v (%s)", res.Err, res.Message)
	}
	code := res.Data["verification_code"]
	if code == "" {
		t.Fatal("register result missing development verification code")
	}
	if res = e.VerifyEmail(ctx, email, code); res.Failed() {
		t.Fatalf("verify: %v (%s)", res.Err, res.Message)
	}
}
