package auth

import (
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yusufloop/icsboltz-auth/internal/lockout"
	"github.com/yusufloop/icsboltz-auth/password"
)

// Config groups all engine tuning. Zero values are filled from
// defaultConfig() at build time; Validate rejects configurations that would
// weaken the security invariants.
type Config struct {
	Security     SecurityConfig
	Password     PasswordConfig
	Verification VerificationConfig
	Session      SessionConfig
	JWT          JWTConfig
	Store        StoreConfig
	Audit        AuditConfig
	Metrics      MetricsConfig

	// DevelopmentMode returns generated verification codes and reset
	// tokens in the result envelope instead of relying solely on the
	// notification collaborator. Never enable in production.
	DevelopmentMode bool

	// Logger receives best-effort warnings (failed counter persists,
	// notifier errors). Defaults to slog.Default().
	Logger *slog.Logger
}

// SecurityConfig controls lockout and challenge-expiry policy.
type SecurityConfig struct {
	// MaxLoginAttempts is the consecutive failure count that triggers a
	// lockout. The attempt that reaches the threshold sets locked_until.
	MaxLoginAttempts int
	// LockoutDuration is the refusal window after the threshold is hit.
	LockoutDuration time.Duration
	// TokenExpiry bounds verification codes and reset tokens.
	TokenExpiry time.Duration
	// MaxChallengeAttempts bounds wrong-code submissions against one
	// outstanding verification or reset row.
	MaxChallengeAttempts int
	// EnumerationDelay pads the not-found branch of ForgotPassword so its
	// timing resembles the found branch.
	EnumerationDelay time.Duration
}

// PasswordConfig controls the credential hasher.
type PasswordConfig struct {
	Cost int // bcrypt work factor
}

// VerificationConfig controls generated challenge shapes.
type VerificationConfig struct {
	CodeLength int
}

// SessionConfig controls the Redis-backed session primitive.
type SessionConfig struct {
	RedisPrefix string
	Lifetime    time.Duration
}

// JWTConfig controls the optional HS256 access token minted at login next to
// the opaque session token. Leave SigningKey empty to disable.
type JWTConfig struct {
	SigningKey []byte
	AccessTTL  time.Duration
	Issuer     string
}

// StoreConfig bounds every record-store round trip with an explicit
// deadline.
type StoreConfig struct {
	Timeout time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Security: SecurityConfig{
			MaxLoginAttempts:     lockout.DefaultMaxAttempts,
			LockoutDuration:      lockout.DefaultLockoutDuration,
			TokenExpiry:          lockout.DefaultTokenExpiry,
			MaxChallengeAttempts: 5,
			EnumerationDelay:     75 * time.Millisecond,
		},
		Password: PasswordConfig{
			Cost: password.DefaultCost,
		},
		Verification: VerificationConfig{
			CodeLength: 6,
		},
		Session: SessionConfig{
			RedisPrefix: "auth",
			Lifetime:    7 * 24 * time.Hour,
		},
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
			Issuer:    "icsboltz-auth",
		},
		Store: StoreConfig{
			Timeout: 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if len(cfg.JWT.SigningKey) > 0 {
		out.JWT.SigningKey = append([]byte(nil), cfg.JWT.SigningKey...)
	}
	return out
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.Security.MaxLoginAttempts < 1 {
		return errors.New("Security.MaxLoginAttempts must be at least 1")
	}
	if c.Security.LockoutDuration <= 0 {
		return errors.New("Security.LockoutDuration must be positive")
	}
	if c.Security.TokenExpiry <= 0 {
		return errors.New("Security.TokenExpiry must be positive")
	}
	if c.Security.MaxChallengeAttempts < 1 {
		return errors.New("Security.MaxChallengeAttempts must be at least 1")
	}
	if c.Password.Cost < bcrypt.MinCost || c.Password.Cost > bcrypt.MaxCost {
		return errors.New("Password.Cost outside bcrypt bounds")
	}
	if c.Verification.CodeLength < 4 || c.Verification.CodeLength > 16 {
		return errors.New("Verification.CodeLength must be between 4 and 16")
	}
	if c.Session.Lifetime <= 0 {
		return errors.New("Session.Lifetime must be positive")
	}
	if len(c.JWT.SigningKey) > 0 && c.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive when signing is enabled")
	}
	if c.Store.Timeout <= 0 {
		return errors.New("Store.Timeout must be positive")
	}
	return nil
}
