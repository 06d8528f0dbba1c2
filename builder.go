package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/yusufloop/icsboltz-auth/internal/audit"
	internalmetrics "github.com/yusufloop/icsboltz-auth/internal/metrics"
	"github.com/yusufloop/icsboltz-auth/jwt"
	"github.com/yusufloop/icsboltz-auth/notify"
	"github.com/yusufloop/icsboltz-auth/password"
	"github.com/yusufloop/icsboltz-auth/session"
)

// Builder assembles an [Engine]. All With* methods mutate the builder and
// return it for chaining; Build may be called once.
type Builder struct {
	config    Config
	store     Store
	redis     redis.UniversalClient
	sessions  *session.Manager
	notifier  notify.Notifier
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New starts a builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the configuration. Zero-valued sections are filled
// from defaults at build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore supplies the record store. Required.
func (b *Builder) WithStore(st Store) *Builder {
	b.store = st
	return b
}

// WithRedis supplies the Redis client backing the session primitive.
// Required unless WithSessions provides a prebuilt manager.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessions supplies a prebuilt session manager, overriding WithRedis.
func (b *Builder) WithSessions(m *session.Manager) *Builder {
	b.sessions = m
	return b
}

// WithNotifier supplies the out-of-band delivery collaborator. Defaults to
// [notify.NoOp].
func (b *Builder) WithNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink supplies the audit sink. Defaults to a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger supplies the logger for best-effort warnings.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build validates the wiring and returns the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, errors.New("record store required")
	}

	sessions := b.sessions
	if sessions == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or session manager required")
		}
		sessions = session.NewManager(b.redis, session.Config{
			Prefix:   cfg.Session.RedisPrefix,
			Lifetime: cfg.Session.Lifetime,
		})
	}

	hasher, err := password.NewHasher(cfg.Password.Cost)
	if err != nil {
		return nil, err
	}

	var jwts *jwt.Manager
	if len(cfg.JWT.SigningKey) > 0 {
		jwts, err = jwt.NewManager(jwt.Config{
			SigningKey: cfg.JWT.SigningKey,
			AccessTTL:  cfg.JWT.AccessTTL,
			Issuer:     cfg.JWT.Issuer,
		})
		if err != nil {
			return nil, err
		}
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = notify.NoOp{}
	}

	logger := b.logger
	if logger == nil {
		if cfg.Logger != nil {
			logger = cfg.Logger
		} else {
			logger = slog.Default()
		}
	}

	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return &Engine{
		config:   cfg,
		store:    b.store,
		sessions: sessions,
		notifier: notifier,
		hasher:   hasher,
		jwts:     jwts,
		audit:    dispatcher,
		metrics:  internalmetrics.New(internalmetrics.Config{Enabled: cfg.Metrics.Enabled}),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// applyConfigDefaults fills zero-valued fields so WithConfig callers only
// need to set what they change.
func applyConfigDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Security.MaxLoginAttempts == 0 {
		cfg.Security.MaxLoginAttempts = def.Security.MaxLoginAttempts
	}
	if cfg.Security.LockoutDuration == 0 {
		cfg.Security.LockoutDuration = def.Security.LockoutDuration
	}
	if cfg.Security.TokenExpiry == 0 {
		cfg.Security.TokenExpiry = def.Security.TokenExpiry
	}
	if cfg.Security.MaxChallengeAttempts == 0 {
		cfg.Security.MaxChallengeAttempts = def.Security.MaxChallengeAttempts
	}
	if cfg.Password.Cost == 0 {
		cfg.Password.Cost = def.Password.Cost
	}
	if cfg.Verification.CodeLength == 0 {
		cfg.Verification.CodeLength = def.Verification.CodeLength
	}
	if cfg.Session.RedisPrefix == "" {
		cfg.Session.RedisPrefix = def.Session.RedisPrefix
	}
	if cfg.Session.Lifetime == 0 {
		cfg.Session.Lifetime = def.Session.Lifetime
	}
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = def.JWT.Issuer
	}
	if cfg.Store.Timeout == 0 {
		cfg.Store.Timeout = def.Store.Timeout
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
}
