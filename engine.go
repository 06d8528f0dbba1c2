package auth

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"strings"
	"time"

	internalaudit "github.com/yusufloop/icsboltz-auth/internal/audit"
	internalmetrics "github.com/yusufloop/icsboltz-auth/internal/metrics"
	"github.com/yusufloop/icsboltz-auth/jwt"
	"github.com/yusufloop/icsboltz-auth/notify"
	"github.com/yusufloop/icsboltz-auth/password"
	"github.com/yusufloop/icsboltz-auth/session"
)

const (
	// lockoutMessageGranularity rounds the remaining-lockout duration shown
	// to callers so messages do not leak sub-second timing.
	lockoutMessageGranularity = time.Second

	// timeMetadataLayout formats timestamps placed in audit metadata.
	timeMetadataLayout = time.RFC3339
)

// Engine runs the account-security flows. Build one with [New]; it is
// immutable and safe for concurrent use afterwards.
type Engine struct {
	config   Config
	store    Store
	sessions *session.Manager
	notifier notify.Notifier
	hasher   *password.Hasher
	jwts     *jwt.Manager // nil when access tokens are disabled
	audit    *internalaudit.Dispatcher
	metrics  *internalmetrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// Sessions exposes the session manager, mainly so callers can Subscribe to
// lifecycle events.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// MetricsSnapshot returns a deep copy of all flow counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events the dispatcher shed under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) warn(msg string, args ...any) {
	if e == nil || e.logger == nil {
		return
	}
	e.logger.Warn(msg, args...)
}

// opCtx bounds one store round trip with the configured deadline.
func (e *Engine) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.Store.Timeout)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// sleepEnumerationDelay pads the not-found branch of ForgotPassword so its
// latency resembles the challenge-issuing branch.
func (e *Engine) sleepEnumerationDelay(ctx context.Context) error {
	base := e.config.Security.EnumerationDelay
	if base <= 0 {
		return nil
	}
	jitter := time.Duration(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(int64(base))); err == nil {
		jitter = time.Duration(n.Int64())
	}

	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
