package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenMismatch is returned when a token decodes to an existing session
// but its secret does not match the stored hash.
var ErrTokenMismatch = errors.New("session token mismatch")

// ErrSessionExpired is returned when a resolved session is past its
// deadline. The record is deleted as a side effect.
var ErrSessionExpired = errors.New("session expired")

// Config tunes a Manager.
type Config struct {
	Prefix   string
	Lifetime time.Duration
}

// Manager issues, resolves, and destroys sessions, and publishes lifecycle
// events to subscribers. It is safe for concurrent use.
type Manager struct {
	store    *Store
	lifetime time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	listeners []func(Event)
}

// NewManager wires a manager over the given Redis client.
func NewManager(client redis.UniversalClient, cfg Config) *Manager {
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 7 * 24 * time.Hour
	}
	return &Manager{
		store:    NewStore(client, cfg.Prefix),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Subscribe registers a callback for session lifecycle events. Callbacks run
// synchronously on the goroutine that triggered the event and must not
// block.
func (m *Manager) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) publish(ev Event) {
	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Create persists a new session for the user and returns it together with
// the bearer token. The token is the only copy of the secret; it cannot be
// reconstructed later.
func (m *Manager) Create(ctx context.Context, userID, email string) (*Session, string, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, "", err
	}
	secret, err := newSecret()
	if err != nil {
		return nil, "", err
	}

	now := m.now()
	sess := &Session{
		ID:         id,
		UserID:     userID,
		Email:      email,
		SecretHash: hashSecret(secret[:]),
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.lifetime),
	}
	if err := m.store.Save(ctx, sess, m.lifetime); err != nil {
		return nil, "", err
	}

	token, err := encodeToken(id, secret)
	if err != nil {
		_, _ = m.store.Delete(ctx, id)
		return nil, "", err
	}

	m.publish(Event{Type: EventCreated, SessionID: id, UserID: userID})
	return sess, token, nil
}

// Resolve validates a bearer token and returns its live session. Expired
// records are deleted and reported as ErrSessionExpired; a malformed token
// resolves to ErrSessionNotFound so callers see one "no session" failure
// mode for guessable inputs.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	id, secret, err := decodeToken(token)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare(sess.SecretHash, hashSecret(secret[:])) != 1 {
		return nil, ErrTokenMismatch
	}
	if m.now().After(sess.ExpiresAt) {
		_, _ = m.store.Delete(ctx, id)
		m.publish(Event{Type: EventExpired, SessionID: id, UserID: sess.UserID})
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Destroy removes the session a token points at and reports whether one was
// actually removed. Destroying an absent or malformed token is a no-op,
// keeping logout idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) (bool, error) {
	id, secret, err := decodeToken(token)
	if err != nil {
		return false, nil
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	if subtle.ConstantTimeCompare(sess.SecretHash, hashSecret(secret[:])) != 1 {
		return false, nil
	}

	existed, err := m.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if existed {
		m.publish(Event{Type: EventDestroyed, SessionID: id, UserID: sess.UserID})
	}
	return existed, nil
}

// Lifetime returns the configured session lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}
