package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yusufloop/icsboltz-auth/internal/lockout"
)

// Login authenticates an email/password pair and opens a session.
//
// The checks run in a fixed order: lookup, lockout window, active flag,
// password, verified flag. Unknown email and wrong password return the
// same message so callers cannot probe which emails exist. Every failed
// password attempt counts toward the lockout threshold; hitting it locks
// the account for the configured duration. A successful login resets the
// counters and records the login time.
func (e *Engine) Login(ctx context.Context, email, pass string) Result {
	if e == nil || e.store == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}

	email = normalizeEmail(email)
	if email == "" || pass == "" {
		return failResult(ErrValidation, "email and password are required")
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	user, err := e.store.FindUserByEmail(opCtx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLogin, false, "", email, "", ErrInvalidCredentials, nil)
			return failResult(ErrInvalidCredentials, ErrInvalidCredentials.Error())
		}
		e.emitAudit(ctx, auditEventLogin, false, "", email, "", err, nil)
		return failResult(ErrStoreUnavailable, "login failed, try again later")
	}

	now := e.now()
	if lockout.IsLocked(user.LockedUntil, now) {
		remaining := user.LockedUntil.Sub(now).Round(lockoutMessageGranularity)
		e.metricInc(MetricLoginLockout)
		e.emitAudit(ctx, auditEventLogin, false, user.ID, email, "", ErrAccountLocked, func() map[string]string {
			return map[string]string{"locked_until": user.LockedUntil.Format(timeMetadataLayout)}
		})
		return failResult(ErrAccountLocked,
			fmt.Sprintf("account locked due to repeated failed logins, try again in %s", remaining))
	}

	if !user.IsActive {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, user.ID, email, "", ErrAccountDeactivated, nil)
		return failResult(ErrAccountDeactivated, "this account has been deactivated")
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	if err != nil {
		e.warn("auth: stored password hash unreadable", "user_id", user.ID, "err", err)
	}
	if !ok {
		outcome := lockout.OnFailure(user.FailedLoginAttempts, user.LockedUntil, now,
			e.config.Security.MaxLoginAttempts, e.config.Security.LockoutDuration)
		user.FailedLoginAttempts = outcome.Attempts
		user.LockedUntil = outcome.LockedUntil
		user.UpdatedAt = now
		// Best effort: a failed counter write must not change the outcome.
		if uerr := e.store.UpdateUser(opCtx, user); uerr != nil {
			e.warn("auth: failed-attempt counter write failed", "user_id", user.ID, "err", uerr)
		}

		if outcome.Locked {
			e.metricInc(MetricLoginLockout)
		} else {
			e.metricInc(MetricLoginFailure)
		}
		e.emitAudit(ctx, auditEventLogin, false, user.ID, email, "", ErrInvalidCredentials, func() map[string]string {
			md := map[string]string{"failed_attempts": fmt.Sprintf("%d", outcome.Attempts)}
			if outcome.Locked {
				md["locked"] = "true"
			}
			return md
		})
		// Same message as the unknown-email branch, even when this attempt
		// triggered the lock. The caller learns about the lock next time.
		return failResult(ErrInvalidCredentials, ErrInvalidCredentials.Error())
	}

	if !user.EmailVerified {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, user.ID, email, "", ErrEmailNotVerified, nil)
		return failResultData(ErrEmailNotVerified,
			"email not verified, check your inbox for the verification code",
			map[string]string{"email": email})
	}

	sess, token, err := e.sessions.Create(ctx, user.ID, user.Email)
	if err != nil {
		e.emitAudit(ctx, auditEventLogin, false, user.ID, email, "", err, nil)
		return failResult(ErrSessionUnavailable, "login failed, try again later")
	}
	e.metricInc(MetricSessionCreated)

	success := lockout.OnSuccess(now)
	user.FailedLoginAttempts = success.Attempts
	user.LockedUntil = success.LockedUntil
	user.LastLoginAt = &success.LastLoginAt
	user.UpdatedAt = now
	if uerr := e.store.UpdateUser(opCtx, user); uerr != nil {
		e.warn("auth: post-login counter reset failed", "user_id", user.ID, "err", uerr)
	}

	data := map[string]string{
		"user_id":       user.ID,
		"email":         user.Email,
		"session_token": token,
	}
	if e.jwts != nil {
		access, jerr := e.jwts.Issue(user.ID, user.Email, sess.ID)
		if jerr != nil {
			e.warn("auth: access token issuance failed", "user_id", user.ID, "err", jerr)
		} else {
			data["access_token"] = access
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, true, user.ID, email, sess.ID, nil, nil)
	return okResultData("login successful", data)
}
