package auth

import (
	"context"
	"errors"
	"time"
)

// SecurityReport is an operator-facing snapshot of one account's security
// posture. It is assembled from the durable record only and never touches
// the session backend.
type SecurityReport struct {
	UserID        string
	Email         string
	IsActive      bool
	EmailVerified bool

	FailedLoginAttempts int
	Locked              bool
	LockedUntil         *time.Time

	VerificationOutstanding bool
	VerificationExpiresAt   *time.Time
	ResetOutstanding        bool
	ResetExpiresAt          *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	GeneratedAt time.Time
}

// Report builds a SecurityReport for the account holding email. This is an
// operator surface; unlike the login path it distinguishes unknown emails.
func (e *Engine) Report(ctx context.Context, email string) (*SecurityReport, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrValidation
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	user, err := e.store.FindUserByEmail(opCtx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := e.now()
	report := &SecurityReport{
		UserID:              user.ID,
		Email:               user.Email,
		IsActive:            user.IsActive,
		EmailVerified:       user.EmailVerified,
		FailedLoginAttempts: user.FailedLoginAttempts,
		LastLoginAt:         user.LastLoginAt,
		CreatedAt:           user.CreatedAt,
		GeneratedAt:         now,
	}

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		report.Locked = true
		report.LockedUntil = user.LockedUntil
	}
	if user.EmailVerificationExpiresAt != nil && now.Before(*user.EmailVerificationExpiresAt) {
		report.VerificationOutstanding = true
		report.VerificationExpiresAt = user.EmailVerificationExpiresAt
	}
	if user.PasswordResetExpiresAt != nil && now.Before(*user.PasswordResetExpiresAt) {
		report.ResetOutstanding = true
		report.ResetExpiresAt = user.PasswordResetExpiresAt
	}

	return report, nil
}
