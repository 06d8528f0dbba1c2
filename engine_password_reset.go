package auth

import (
	"context"
	"errors"

	"github.com/yusufloop/icsboltz-auth/internal"
	"github.com/yusufloop/icsboltz-auth/notify"
)

// ForgotPassword issues a password-reset token (and short code) for the
// account holding email.
//
// The response is the same whether or not the account exists, and the
// unknown-email path sleeps roughly as long as the issuing path takes, so
// the endpoint cannot be used to enumerate accounts.
func (e *Engine) ForgotPassword(ctx context.Context, email string) Result {
	if e == nil || e.store == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}

	const sentMessage = "if an account exists for this email, a reset link has been sent"

	email = normalizeEmail(email)
	if email == "" {
		return failResult(ErrValidation, "email is required")
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	user, err := e.store.FindUserByEmail(opCtx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if derr := e.sleepEnumerationDelay(ctx); derr != nil {
				return failResult(derr, "request cancelled")
			}
			e.metricInc(MetricResetRequest)
			e.emitAudit(ctx, auditEventResetRequest, true, "", email, "", nil, func() map[string]string {
				return map[string]string{"account": "unknown"}
			})
			return okResult(sentMessage)
		}
		e.emitAudit(ctx, auditEventResetRequest, false, "", email, "", err, nil)
		return failResult(ErrStoreUnavailable, "request failed, try again later")
	}

	token, err := internal.NewToken()
	if err != nil {
		e.emitAudit(ctx, auditEventResetRequest, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "request failed, try again later")
	}
	code, err := internal.NewVerificationCode(e.config.Verification.CodeLength)
	if err != nil {
		e.emitAudit(ctx, auditEventResetRequest, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "request failed, try again later")
	}

	now := e.now()
	expiresAt := now.Add(e.config.Security.TokenExpiry)
	reset := &PasswordReset{
		ID:        internal.NewID(),
		UserID:    user.ID,
		Email:     email,
		Token:     token,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := e.store.InsertPasswordReset(opCtx, reset); err != nil {
		e.emitAudit(ctx, auditEventResetRequest, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "request failed, try again later")
	}

	user.PasswordResetToken = &token
	user.PasswordResetExpiresAt = &expiresAt
	user.PasswordResetAttempts = 0
	user.UpdatedAt = now
	if err := e.store.UpdateUser(opCtx, user); err != nil {
		e.warn("auth: reset token denormalization failed", "user_id", user.ID, "err", err)
	}

	if err := e.notifier.ResetIssued(ctx, notify.ResetNotice{
		Email:     email,
		Token:     token,
		Code:      code,
		ExpiresAt: expiresAt,
	}); err != nil {
		e.warn("auth: reset notice delivery failed", "email", email, "err", err)
	}

	e.metricInc(MetricResetRequest)
	e.emitAudit(ctx, auditEventResetRequest, true, user.ID, email, "", nil, nil)

	var data map[string]string
	if e.config.DevelopmentMode {
		data = map[string]string{
			"reset_token": token,
			"reset_code":  code,
		}
	}
	return okResultData(sentMessage, data)
}

// ResetPassword consumes a reset token and sets a new password. The token
// is single use; consuming it also clears any lockout window, since the
// caller has just proven control of the email account.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) Result {
	if e == nil || e.store == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}
	if token == "" || newPassword == "" {
		return failResult(ErrValidation, "reset token and new password are required")
	}
	if newPassword != confirmPassword {
		return failResult(ErrValidation, "passwords do not match")
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	reset, err := e.store.FindPasswordReset(opCtx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, auditEventResetConfirm, false, "", "", "", ErrInvalidToken, nil)
			return failResult(ErrInvalidToken, "invalid or expired reset link")
		}
		e.emitAudit(ctx, auditEventResetConfirm, false, "", "", "", err, nil)
		return failResult(ErrStoreUnavailable, "password reset failed, try again later")
	}

	return e.completeReset(ctx, opCtx, reset, newPassword)
}

// ResetPasswordWithCode is the code-entry alternate to ResetPassword for
// clients that cannot open the emailed link. Wrong codes count against the
// outstanding request's attempt ceiling.
func (e *Engine) ResetPasswordWithCode(ctx context.Context, email, code, newPassword, confirmPassword string) Result {
	if e == nil || e.store == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}

	email = normalizeEmail(email)
	code = normalizeCode(code)
	if email == "" || code == "" || newPassword == "" {
		return failResult(ErrValidation, "email, reset code, and new password are required")
	}
	if newPassword != confirmPassword {
		return failResult(ErrValidation, "passwords do not match")
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	reset, err := e.store.FindPasswordResetByCode(opCtx, email, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			attempts, ierr := e.store.IncrementPasswordResetAttempts(opCtx, email)
			if ierr != nil {
				e.warn("auth: reset attempt counter write failed", "email", email, "err", ierr)
			}
			if attempts >= e.config.Security.MaxChallengeAttempts && attempts > 0 {
				e.metricInc(MetricResetAttemptsExceeded)
				e.emitAudit(ctx, auditEventResetConfirm, false, "", email, "", ErrTooManyAttempts, nil)
				return failResult(ErrTooManyAttempts, "too many attempts, request a new reset code")
			}
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, auditEventResetConfirm, false, "", email, "", ErrInvalidCode, nil)
			return failResult(ErrInvalidCode, "invalid reset code")
		}
		e.emitAudit(ctx, auditEventResetConfirm, false, "", email, "", err, nil)
		return failResult(ErrStoreUnavailable, "password reset failed, try again later")
	}

	if reset.Attempts >= e.config.Security.MaxChallengeAttempts {
		e.metricInc(MetricResetAttemptsExceeded)
		e.emitAudit(ctx, auditEventResetConfirm, false, reset.UserID, email, "", ErrTooManyAttempts, nil)
		return failResult(ErrTooManyAttempts, "too many attempts, request a new reset code")
	}

	return e.completeReset(ctx, opCtx, reset, newPassword)
}

// completeReset is the shared back half of both reset paths: expiry check,
// consume the row, rehash, and clear the failure counters.
func (e *Engine) completeReset(ctx, opCtx context.Context, reset *PasswordReset, newPassword string) Result {
	now := e.now()
	if now.After(reset.ExpiresAt) {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventResetConfirm, false, reset.UserID, reset.Email, "", ErrExpired, nil)
		return failResult(ErrExpired, "reset link expired, request a new one")
	}

	user, err := e.store.FindUserByID(opCtx, reset.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, auditEventResetConfirm, false, reset.UserID, reset.Email, "", ErrInvalidToken, nil)
			return failResult(ErrInvalidToken, "invalid or expired reset link")
		}
		e.emitAudit(ctx, auditEventResetConfirm, false, reset.UserID, reset.Email, "", err, nil)
		return failResult(ErrStoreUnavailable, "password reset failed, try again later")
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventResetConfirm, false, user.ID, reset.Email, "", err, nil)
		return failResult(ErrValidation, "password not acceptable")
	}

	// Consume first so a concurrent request with the same token loses.
	if err := e.store.MarkPasswordResetUsed(opCtx, reset.ID, now); err != nil {
		e.emitAudit(ctx, auditEventResetConfirm, false, user.ID, reset.Email, "", err, nil)
		return failResult(ErrStoreUnavailable, "password reset failed, try again later")
	}

	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.PasswordResetExpiresAt = nil
	user.PasswordResetAttempts = 0
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.UpdatedAt = now
	if err := e.store.UpdateUser(opCtx, user); err != nil {
		e.emitAudit(ctx, auditEventResetConfirm, false, user.ID, reset.Email, "", err, nil)
		return failResult(ErrStoreUnavailable, "password reset failed, try again later")
	}

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, auditEventResetConfirm, true, user.ID, reset.Email, "", nil, nil)
	return okResultData("password updated, you can now log in", map[string]string{"email": user.Email})
}
