package auth

import (
	"context"
	"errors"

	"github.com/yusufloop/icsboltz-auth/internal"
	"github.com/yusufloop/icsboltz-auth/notify"
)

// Register creates a new account and issues its email-verification
// challenge.
//
// A verified account already holding the email fails with
// [ErrDuplicateAccount]. An unverified account holding it is deleted and
// replaced, which orphans that account's outstanding verification codes.
// On success the result carries the email; in development mode it also
// carries the generated code and token.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) Result {
	if e == nil || e.store == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		e.emitAudit(ctx, auditEventRegister, false, "", email, "", ErrValidation, nil)
		return failResult(ErrValidation, "email and password are required")
	}
	if req.Password != req.ConfirmPassword {
		e.emitAudit(ctx, auditEventRegister, false, "", email, "", ErrValidation, nil)
		return failResult(ErrValidation, "passwords do not match")
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	existing, err := e.store.FindUserByEmail(opCtx, email)
	switch {
	case err == nil && existing.EmailVerified:
		e.metricInc(MetricRegistrationDuplicate)
		e.emitAudit(ctx, auditEventRegister, false, existing.ID, email, "", ErrDuplicateAccount, nil)
		return failResult(ErrDuplicateAccount, "an account with this email already exists")
	case err == nil:
		// Stale unverified registration: delete and start over. Not
		// reversible; the old row's challenges become orphaned.
		if err := e.store.DeleteUser(opCtx, existing.ID); err != nil {
			e.emitAudit(ctx, auditEventRegister, false, existing.ID, email, "", err, nil)
			return failResult(ErrStoreUnavailable, "registration failed, try again later")
		}
		e.emitAudit(ctx, auditEventRegister, true, existing.ID, email, "", nil, func() map[string]string {
			return map[string]string{"replaced": "stale_unverified_user"}
		})
	case !errors.Is(err, ErrNotFound):
		e.emitAudit(ctx, auditEventRegister, false, "", email, "", err, nil)
		return failResult(ErrStoreUnavailable, "registration failed, try again later")
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventRegister, false, "", email, "", err, nil)
		return failResult(ErrValidation, "password not acceptable")
	}

	now := e.now()
	user := &User{
		ID:           internal.NewID(),
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.InsertUser(opCtx, user); err != nil {
		e.emitAudit(ctx, auditEventRegister, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "registration failed, try again later")
	}

	challenge, err := e.issueVerification(opCtx, user)
	if err != nil {
		// Compensating cleanup: without a challenge the account could
		// never be verified, so drop it and let the user retry.
		if delErr := e.store.DeleteUser(opCtx, user.ID); delErr != nil {
			e.warn("auth: cleanup of unverifiable user failed", "user_id", user.ID, "err", delErr)
		}
		e.emitAudit(ctx, auditEventRegister, false, user.ID, email, "", err, nil)
		return failResult(ErrStoreUnavailable, "registration failed, try again later")
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventRegister, true, user.ID, email, "", nil, nil)

	data := map[string]string{"email": email}
	if e.config.DevelopmentMode {
		data["verification_code"] = challenge.Code
		data["verification_token"] = challenge.Token
	}
	return okResultData("registration successful, check your email for the verification code", data)
}

// issueVerification generates a fresh code+token challenge, persists the
// row, denormalizes the token onto the user, and notifies. Shared by
// Register and ResendVerificationCode.
func (e *Engine) issueVerification(ctx context.Context, user *User) (*EmailVerification, error) {
	code, err := internal.NewVerificationCode(e.config.Verification.CodeLength)
	if err != nil {
		return nil, err
	}
	token, err := internal.NewToken()
	if err != nil {
		return nil, err
	}

	now := e.now()
	expiresAt := now.Add(e.config.Security.TokenExpiry)
	challenge := &EmailVerification{
		ID:        internal.NewID(),
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := e.store.InsertEmailVerification(ctx, challenge); err != nil {
		return nil, err
	}

	e.metricInc(MetricVerificationRequest)

	user.EmailVerificationToken = &token
	user.EmailVerificationExpiresAt = &expiresAt
	user.EmailVerificationAttempts = 0
	user.UpdatedAt = now
	if err := e.store.UpdateUser(ctx, user); err != nil {
		// The challenge row is authoritative; the denormalized copy on
		// the user is convenience only.
		e.warn("auth: verification token denormalization failed", "user_id", user.ID, "err", err)
	}

	if err := e.notifier.VerificationIssued(ctx, notify.VerificationNotice{
		Email:     user.Email,
		Code:      code,
		Token:     token,
		ExpiresAt: expiresAt,
	}); err != nil {
		e.warn("auth: verification notice delivery failed", "email", user.Email, "err", err)
	}

	return challenge, nil
}
