package auth

import (
	"context"

	internalaudit "github.com/yusufloop/icsboltz-auth/internal/audit"
)

const (
	auditEventLogin               = "auth.login"
	auditEventRegister            = "auth.register"
	auditEventVerificationRequest = "auth.email_verification.request"
	auditEventVerificationConfirm = "auth.email_verification.confirm"
	auditEventResetRequest        = "auth.password_reset.request"
	auditEventResetConfirm        = "auth.password_reset.confirm"
	auditEventLogout              = "auth.logout"
	auditEventBootstrap           = "auth.bootstrap"
)

// emitAudit forwards one event to the dispatcher. The metadata closure is
// only invoked when audit is enabled, keeping the disabled path
// allocation-free.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID, email, sessionID string,
	cause error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: e.now(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
