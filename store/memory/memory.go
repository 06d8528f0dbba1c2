// Package memory holds an in-memory record store. It backs the test suites
// and small demos; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	auth "github.com/yusufloop/icsboltz-auth"
)

// Store keeps all records in maps behind one mutex. Methods hand out deep
// copies, so callers can mutate results freely and nothing is visible until
// the corresponding Update/Insert lands.
type Store struct {
	mu            sync.RWMutex
	users         map[string]*auth.User // keyed by ID
	verifications map[string]*auth.EmailVerification
	resets        map[string]*auth.PasswordReset
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:         make(map[string]*auth.User),
		verifications: make(map[string]*auth.EmailVerification),
		resets:        make(map[string]*auth.PasswordReset),
	}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, auth.ErrNotFound)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, auth.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) InsertUser(ctx context.Context, u *auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("user %q already exists", u.ID)
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("email %q already taken", u.Email)
		}
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return fmt.Errorf("user %q: %w", u.ID, auth.ErrNotFound)
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *Store) InsertEmailVerification(ctx context.Context, v *auth.EmailVerification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[v.ID] = copyVerification(v)
	return nil
}

func (s *Store) FindEmailVerification(ctx context.Context, email, code string) (*auth.EmailVerification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []*auth.EmailVerification
	for _, v := range s.verifications {
		if v.VerifiedAt == nil &&
			strings.EqualFold(v.Email, email) &&
			strings.EqualFold(v.Code, code) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("verification for %q: %w", email, auth.ErrNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return copyVerification(candidates[0]), nil
}

func (s *Store) MarkEmailVerificationVerified(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verifications[id]
	if !ok || v.VerifiedAt != nil {
		return fmt.Errorf("verification %q: %w", id, auth.ErrNotFound)
	}
	at = at.UTC()
	v.VerifiedAt = &at
	return nil
}

func (s *Store) IncrementEmailVerificationAttempts(ctx context.Context, email string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	newest := newestOutstandingVerification(s.verifications, email)
	if newest == nil {
		return 0, nil
	}
	newest.Attempts++
	return newest.Attempts, nil
}

func (s *Store) InsertPasswordReset(ctx context.Context, r *auth.PasswordReset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[r.ID] = copyReset(r)
	return nil
}

func (s *Store) FindPasswordReset(ctx context.Context, token string) (*auth.PasswordReset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.resets {
		if r.UsedAt == nil && r.Token == token {
			return copyReset(r), nil
		}
	}
	return nil, fmt.Errorf("password reset: %w", auth.ErrNotFound)
}

func (s *Store) FindPasswordResetByCode(ctx context.Context, email, code string) (*auth.PasswordReset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []*auth.PasswordReset
	for _, r := range s.resets {
		if r.UsedAt == nil &&
			strings.EqualFold(r.Email, email) &&
			strings.EqualFold(r.Code, code) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("password reset for %q: %w", email, auth.ErrNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return copyReset(candidates[0]), nil
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[id]
	if !ok || r.UsedAt != nil {
		return fmt.Errorf("password reset %q: %w", id, auth.ErrNotFound)
	}
	at = at.UTC()
	r.UsedAt = &at
	return nil
}

func (s *Store) IncrementPasswordResetAttempts(ctx context.Context, email string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *auth.PasswordReset
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

func newestOutstandingVerification(all map[string]*auth.EmailVerification, email string) *auth.EmailVerification {
	var newest *auth.EmailVerification
	for _, v := range all {
		if v.VerifiedAt != nil || !strings.EqualFold(v.Email, email) {
			continue
		}
		if newest == nil || v.CreatedAt.After(newest.CreatedAt) {
			newest = v
		}
	}
	return newest
}

func copyUser(u *auth.User) *auth.User {
	c := *u
	c.EmailVerificationToken = copyString(u.EmailVerificationToken)
	c.EmailVerificationExpiresAt = copyTime(u.EmailVerificationExpiresAt)
	c.LockedUntil = copyTime(u.LockedUntil)
	c.PasswordResetToken = copyString(u.PasswordResetToken)
	c.PasswordResetExpiresAt = copyTime(u.PasswordResetExpiresAt)
	c.LastLoginAt = copyTime(u.LastLoginAt)
	return &c
}

func copyVerification(v *auth.EmailVerification) *auth.EmailVerification {
	c := *v
	c.VerifiedAt = copyTime(v.VerifiedAt)
	return &c
}

func copyReset(r *auth.PasswordReset) *auth.PasswordReset {
	c := *r
	c.UsedAt = copyTime(r.UsedAt)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
