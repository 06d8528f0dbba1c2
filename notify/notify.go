// Package notify is the out-of-band delivery collaborator. The engine hands
// it every generated verification code and reset token; a real deployment
// forwards them to an email/SMS pipeline, development setups may discard
// them because the engine echoes secrets in its result envelope when
// development mode is on.
package notify

import (
	"context"
	"time"
)

// VerificationNotice carries a freshly issued email-verification challenge.
type VerificationNotice struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetNotice carries a freshly issued password-reset challenge.
type ResetNotice struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier delivers challenges to the account owner. Failures are logged by
// the engine and never fail the issuing flow.
type Notifier interface {
	VerificationIssued(ctx context.Context, n VerificationNotice) error
	ResetIssued(ctx context.Context, n ResetNotice) error
}

// NoOp discards all notices.
type NoOp struct{}

func (NoOp) VerificationIssued(context.Context, VerificationNotice) error { return nil }
func (NoOp) ResetIssued(context.Context, ResetNotice) error               { return nil }
