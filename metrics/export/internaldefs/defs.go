// Package internaldefs maps counter IDs to their stable export names. Both
// exporters read from this table so the two surfaces never drift.
package internaldefs

import (
	auth "github.com/yusufloop/icsboltz-auth"
)

// CounterDef binds one counter ID to its exported name and help text.
type CounterDef struct {
	ID   auth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a fixed order.
var CounterDefs = []CounterDef{
	{ID: auth.MetricLoginSuccess, Name: "auth_login_success_total", Help: "Successful logins."},
	{ID: auth.MetricLoginFailure, Name: "auth_login_failure_total", Help: "Rejected logins."},
	{ID: auth.MetricLoginLockout, Name: "auth_login_lockout_total", Help: "Logins refused or triggered by a lockout window."},
	{ID: auth.MetricRegistrationSuccess, Name: "auth_registration_success_total", Help: "Created accounts."},
	{ID: auth.MetricRegistrationDuplicate, Name: "auth_registration_duplicate_total", Help: "Registrations rejected for an existing verified email."},
	{ID: auth.MetricVerificationRequest, Name: "auth_email_verification_request_total", Help: "Issued email verification challenges."},
	{ID: auth.MetricVerificationSuccess, Name: "auth_email_verification_success_total", Help: "Confirmed email verifications."},
	{ID: auth.MetricVerificationFailure, Name: "auth_email_verification_failure_total", Help: "Failed email verification confirms."},
	{ID: auth.MetricVerificationAttemptsExceeded, Name: "auth_email_verification_attempts_exceeded_total", Help: "Verification challenges invalidated by the attempt cap."},
	{ID: auth.MetricResetRequest, Name: "auth_password_reset_request_total", Help: "Issued password reset challenges."},
	{ID: auth.MetricResetSuccess, Name: "auth_password_reset_success_total", Help: "Completed password resets."},
	{ID: auth.MetricResetFailure, Name: "auth_password_reset_failure_total", Help: "Failed password reset confirms."},
	{ID: auth.MetricResetAttemptsExceeded, Name: "auth_password_reset_attempts_exceeded_total", Help: "Reset challenges invalidated by the attempt cap."},
	{ID: auth.MetricSessionCreated, Name: "auth_session_created_total", Help: "Sessions issued at login."},
	{ID: auth.MetricSessionDestroyed, Name: "auth_session_destroyed_total", Help: "Sessions removed by logout."},
	{ID: auth.MetricBootstrapAuthenticated, Name: "auth_bootstrap_authenticated_total", Help: "Bootstraps that resolved a live session."},
	{ID: auth.MetricBootstrapUnauthenticated, Name: "auth_bootstrap_unauthenticated_total", Help: "Bootstraps without a live session."},
}

// AuditDroppedName is the exported counter for audit events shed under
// backpressure. It lives outside the registry because the dispatcher owns
// the count.
const AuditDroppedName = "auth_audit_dropped_total"

// AuditDroppedHelp documents AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
