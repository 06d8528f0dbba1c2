package auth

import (
	"context"
	"errors"

	"github.com/yusufloop/icsboltz-auth/session"
)

// Bootstrap resolves a stored session token into an authenticated state at
// app start. It never fails hard: an absent, malformed, expired, or
// unresolvable token, a missing or deactivated user, and store or session
// backend trouble all degrade to unauthenticated so the app can render its
// login screen.
func (e *Engine) Bootstrap(ctx context.Context, token string) AuthState {
	if e == nil || e.store == nil || token == "" {
		return e.unauthenticated(ctx, nil)
	}

	sess, err := e.sessions.Resolve(ctx, token)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) &&
			!errors.Is(err, session.ErrSessionExpired) &&
			!errors.Is(err, session.ErrTokenMismatch) {
			e.warn("auth: session resolve failed during bootstrap", "err", err)
		}
		return e.unauthenticated(ctx, err)
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()

	user, err := e.store.FindUserByID(opCtx, sess.UserID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.warn("auth: user lookup failed during bootstrap", "user_id", sess.UserID, "err", err)
		}
		return e.unauthenticated(ctx, err)
	}
	if !user.IsActive {
		// Deactivation invalidates live sessions at the next bootstrap.
		if _, derr := e.sessions.Destroy(ctx, token); derr != nil {
			e.warn("auth: stale session teardown failed", "session_id", sess.ID, "err", derr)
		}
		return e.unauthenticated(ctx, ErrAccountDeactivated)
	}

	e.metricInc(MetricBootstrapAuthenticated)
	e.emitAudit(ctx, auditEventBootstrap, true, user.ID, user.Email, sess.ID, nil, nil)
	return AuthState{Authenticated: true, User: user, SessionID: sess.ID}
}

func (e *Engine) unauthenticated(ctx context.Context, cause error) AuthState {
	e.metricInc(MetricBootstrapUnauthenticated)
	e.emitAudit(ctx, auditEventBootstrap, false, "", "", "", cause, nil)
	return AuthState{}
}

// Logout destroys the session behind token. It is idempotent: unknown,
// malformed, and already-destroyed tokens all succeed.
func (e *Engine) Logout(ctx context.Context, token string) Result {
	if e == nil {
		return failResult(ErrEngineNotReady, "service unavailable")
	}
	if token == "" {
		return okResult("logged out")
	}

	destroyed, err := e.sessions.Destroy(ctx, token)
	if err != nil {
		e.emitAudit(ctx, auditEventLogout, false, "", "", "", err, nil)
		return failResult(ErrSessionUnavailable, "logout failed, try again later")
	}
	if destroyed {
		e.metricInc(MetricSessionDestroyed)
	}
	e.emitAudit(ctx, auditEventLogout, true, "", "", "", nil, nil)
	return okResult("logged out")
}
