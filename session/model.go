// Package session is the platform session primitive: opaque bearer tokens
// backed by Redis records with a TTL. A token encodes the session ID plus a
// random secret; only the secret's SHA-256 is stored, so a leaked session
// dump cannot be replayed as tokens.
package session

import "time"

// Session is one live authenticated session.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	SecretHash []byte    `json:"secret_hash"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// EventType classifies session lifecycle notifications.
type EventType int

const (
	// EventCreated fires after a session is persisted at login.
	EventCreated EventType = iota
	// EventDestroyed fires after an explicit logout.
	EventDestroyed
	// EventExpired fires when Resolve finds a session past its deadline.
	EventExpired
)

// Event is delivered to subscribers registered via [Manager.Subscribe].
type Event struct {
	Type      EventType
	SessionID string
	UserID    string
}
