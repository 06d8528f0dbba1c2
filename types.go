package auth

import (
	"context"
	"time"
)

// User is the durable account record. A user can log in iff IsActive,
// EmailVerified, and no lockout window is in effect.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string

	EmailVerified              bool
	EmailVerificationToken     *string
	EmailVerificationExpiresAt *time.Time
	EmailVerificationAttempts  int

	FailedLoginAttempts int
	LockedUntil         *time.Time

	PasswordResetToken     *string
	PasswordResetExpiresAt *time.Time
	PasswordResetAttempts  int

	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// EmailVerification is one outstanding email-ownership challenge. Rows are
// terminal once VerifiedAt is set and must be excluded from lookups after
// that.
type EmailVerification struct {
	ID         string
	UserID     string
	Email      string
	Code       string // stored uppercased; matched case-insensitively
	Token      string // link-based alternate to the code-entry path
	ExpiresAt  time.Time
	VerifiedAt *time.Time
	Attempts   int
	CreatedAt  time.Time
}

// PasswordReset is one outstanding password-reset request. The token is the
// primary lookup key; the code is the human-enterable alternate. Consuming a
// reset sets UsedAt and the row becomes terminal.
type PasswordReset struct {
	ID        string
	UserID    string
	Email     string
	Token     string
	Code      string
	ExpiresAt time.Time
	UsedAt    *time.Time
	Attempts  int
	CreatedAt time.Time
}

// Store is the record-store contract the engine runs against. Implementations
// must return [ErrNotFound] (possibly wrapped) from lookups that match
// nothing, and must restrict challenge lookups to unconsumed rows
// (verified_at IS NULL / used_at IS NULL), newest first.
//
// Counter fields on User are written whole-row with last-write-wins
// semantics; the engine performs no optimistic locking.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	InsertUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error

	InsertEmailVerification(ctx context.Context, v *EmailVerification) error
	// FindEmailVerification matches the newest unconsumed row for
	// (email, code), code compared after uppercasing.
	FindEmailVerification(ctx context.Context, email, code string) (*EmailVerification, error)
	MarkEmailVerificationVerified(ctx context.Context, id string, at time.Time) error
	// IncrementEmailVerificationAttempts bumps the attempt counter on the
	// newest unconsumed row for email and returns the new count, or 0 when
	// no row is outstanding.
	IncrementEmailVerificationAttempts(ctx context.Context, email string) (int, error)

	InsertPasswordReset(ctx context.Context, r *PasswordReset) error
	// FindPasswordReset matches the unconsumed row holding this token.
	FindPasswordReset(ctx context.Context, token string) (*PasswordReset, error)
	// FindPasswordResetByCode matches the newest unconsumed row for
	// (email, code), code compared after uppercasing.
	FindPasswordResetByCode(ctx context.Context, email, code string) (*PasswordReset, error)
	MarkPasswordResetUsed(ctx context.Context, id string, at time.Time) error
	IncrementPasswordResetAttempts(ctx context.Context, email string) (int, error)
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// AuthState is the outcome of [Engine.Bootstrap]: either an authenticated
// user resolved from an existing session token, or unauthenticated. Store and
// session failures degrade to unauthenticated rather than blocking startup.
type AuthState struct {
	Authenticated bool
	User          *User
	SessionID     string
}
