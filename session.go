package auth

import "github.com/yusufloop/icsboltz-auth/session"

// Session is a live authenticated session record.
type Session = session.Session

// SessionEvent is a session lifecycle notification delivered to
// subscribers of [Engine.Sessions].
type SessionEvent = session.Event

// SessionEventType classifies session lifecycle notifications.
type SessionEventType = session.EventType

const (
	// SessionEventCreated fires after a session is persisted at login.
	SessionEventCreated = session.EventCreated
	// SessionEventDestroyed fires after an explicit logout.
	SessionEventDestroyed = session.EventDestroyed
	// SessionEventExpired fires when a resolve finds a session past its
	// deadline.
	SessionEventExpired = session.EventExpired
)
