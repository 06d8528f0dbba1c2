package auth

import "errors"

var (
	// ErrValidation signals malformed input, e.g. mismatched password and
	// confirmation, before any record is touched.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked is returned while a lockout window is in effect.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrAccountDeactivated is returned for users with is_active=false.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrEmailNotVerified is returned on login when credentials check out but
	// the email is still pending verification. The result envelope carries
	// the email so the caller can redirect to the verification screen.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrInvalidCode is returned when a verification or reset code does not
	// match an outstanding unconsumed challenge.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrInvalidToken is returned when a reset token matches no unconsumed
	// password-reset record, including tokens that were already used once.
	ErrInvalidToken = errors.New("invalid or already used token")
	// ErrExpired is returned when a challenge exists but its expiry passed.
	ErrExpired = errors.New("code or token expired")
	// ErrDuplicateAccount is returned when registering an email that already
	// belongs to a verified account.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAlreadyVerified is returned when requesting a new verification code
	// for an account that no longer needs one.
	ErrAlreadyVerified = errors.New("email already verified")
	// ErrUserNotFound is returned by flows that are allowed to reveal
	// existence (resend verification); login and forgot-password are not.
	ErrUserNotFound = errors.New("user not found")
	// ErrTooManyAttempts is returned once a challenge's attempt counter
	// passes the configured ceiling.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrStoreUnavailable wraps persistence failures surfaced through the
	// result envelope.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSessionUnavailable wraps session-backend failures during issuance,
	// resolution, or teardown.
	ErrSessionUnavailable = errors.New("session backend unavailable")
	// ErrNotFound is the record-store sentinel for absent rows. Store
	// implementations must return it (possibly wrapped) from every lookup
	// that matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrEngineNotReady is returned when a flow runs before Build wired its
	// dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
