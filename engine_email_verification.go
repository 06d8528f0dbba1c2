package auth

import (
	"context"
	"errors"
)

// VerifyEmail consumes an outstanding verification code and marks the
// account's email as verified.
//
// A wrong code bumps the attempt counter on the outstanding challenge;
// once the counter passes the ceiling the challenge is dead and the user
// must request a new code. Expired codes fail without consuming the row.
func (e *Engine) VerifyEmail(ctx context.Context, email, code string) Result {
	if e == nil || e.store == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}

	email = normalizeEmail(email)
	code = normalizeCode(code)
	if email == "" || code == "" {
		return failResult(ErrValidation, "email and verification code are required")
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	challenge, err := e.store.FindEmailVerification(opCtx, email, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return e.failVerifyAttempt(ctx, opCtx, email)
		}
		e.emitAudit(ctx, auditEventVerificationConfirm, false, "", email, "", err, nil)
		return failResult(ErrStoreUnavailable, "verification failed, try again later")
	}

	now := e.now()
	if now.After(challenge.ExpiresAt) {
		e.metricInc(MetricVerificationFailure)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, challenge.UserID, email, "", ErrExpired, nil)
		return failResult(ErrExpired, "verification code expired, request a new one")
	}
	if challenge.Attempts >= e.config.Security.MaxChallengeAttempts {
		e.metricInc(MetricVerificationAttemptsExceeded)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, challenge.UserID, email, "", ErrTooManyAttempts, nil)
		return failResult(ErrTooManyAttempts, "too many attempts, request a new verification code")
	}

	user, err := e.store.FindUserByID(opCtx, challenge.UserID)
	if err != nil {
		// The account behind the challenge is gone, usually because a
		// re-registration replaced it. The code is dead either way.
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricVerificationFailure)
			e.emitAudit(ctx, auditEventVerificationConfirm, false, challenge.UserID, email, "", ErrInvalidCode, nil)
			return failResult(ErrInvalidCode, "invalid verification code")
		}
		e.emitAudit(ctx, auditEventVerificationConfirm, false, challenge.UserID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "verification failed, try again later")
	}
	if user.EmailVerified {
		e.emitAudit(ctx, auditEventVerificationConfirm, false, user.ID, email, "", ErrAlreadyVerified, nil)
		return failResult(ErrAlreadyVerified, "email is already verified")
	}

	if err := e.store.MarkEmailVerificationVerified(opCtx, challenge.ID, now); err != nil {
		e.emitAudit(ctx, auditEventVerificationConfirm, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "verification failed, try again later")
	}

	user.EmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpiresAt = nil
	user.EmailVerificationAttempts = 0
	user.UpdatedAt = now
	if err := e.store.UpdateUser(opCtx, user); err != nil {
		// The challenge row is already consumed. Report failure so the
		// caller retries; a retry hits ErrAlreadyVerified only after this
		// write eventually lands.
		e.emitAudit(ctx, auditEventVerificationConfirm, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "verification failed, try again later")
	}

	e.metricInc(MetricVerificationSuccess)
	e.emitAudit(ctx, auditEventVerificationConfirm, true, user.ID, email, "", nil, nil)
	return okResultData("email verified, you can now log in", map[string]string{"email": email})
}

// failVerifyAttempt handles a code that matched no outstanding challenge.
// The attempt still counts against whatever challenge is outstanding for
// the email, so guessing burns the real code's budget.
func (e *Engine) failVerifyAttempt(ctx, opCtx context.Context, email string) Result {
	attempts, err := e.store.IncrementEmailVerificationAttempts(opCtx, email)
	if err != nil {
		e.warn("auth: verification attempt counter write failed", "email", email, "err", err)
	}
	if attempts >= e.config.Security.MaxChallengeAttempts && attempts > 0 {
		e.metricInc(MetricVerificationAttemptsExceeded)
		e.emitAudit(ctx, auditEventVerificationConfirm, false, "", email, "", ErrTooManyAttempts, nil)
		return failResult(ErrTooManyAttempts, "too many attempts, request a new verification code")
	}
	e.metricInc(MetricVerificationFailure)
	e.emitAudit(ctx, auditEventVerificationConfirm, false, "", email, "", ErrInvalidCode, nil)
	return failResult(ErrInvalidCode, "invalid verification code")
}

// ResendVerificationCode issues a fresh challenge for an unverified
// account. The previous code keeps working until it expires; the store
// resolves lookups against the newest row first.
func (e *Engine) ResendVerificationCode(ctx context.Context, email string) Result {
	if e == nil || e.store == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}

	email = normalizeEmail(email)
	if email == "" {
		return failResult(ErrValidation, "email is required")
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	user, err := e.store.FindUserByEmail(opCtx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.emitAudit(ctx, auditEventVerificationRequest, false, "", email, "", ErrUserNotFound, nil)
			return failResult(ErrUserNotFound, "no account found for this email")
		}
		e.emitAudit(ctx, auditEventVerificationRequest, false, "", email, "", err, nil)
		return failResult(ErrStoreUnavailable, "could not send verification code, try again later")
	}
	if user.EmailVerified {
		e.emitAudit(ctx, auditEventVerificationRequest, false, user.ID, email, "", ErrAlreadyVerified, nil)
		return failResult(ErrAlreadyVerified, "email is already verified")
	}

	challenge, err := e.issueVerification(opCtx, user)
	if err != nil {
		e.emitAudit(ctx, auditEventVerificationRequest, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "could not send verification code, try again later")
	}

	e.emitAudit(ctx, auditEventVerificationRequest, true, user.ID, email, "", nil, nil)

	data := map[string]string{"email": email}
	if e.config.DevelopmentMode {
		data["verification_code"] = challenge.Code
		data["verification_token"] = challenge.Token
	}
	return okResultData("verification code sent, check your email", data)
}
