// Package mysql holds the MySQL-backed record store. It speaks plain
// database/sql against the go-sql-driver/mysql driver; schema.sql in this
// directory creates the tables it expects.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	auth "github.com/yusufloop/icsboltz-auth"
)

// Store runs the record queries over an existing *sql.DB. The pool is owned
// by the caller; Store never closes it.
type Store struct {
	db *sql.DB
}

// New wraps the given pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open dials MySQL with sensible pool limits and verifies connectivity.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying pool, mainly so callers can close it on
// shutdown.
func (s *Store) DB() *sql.DB {
	return s.db
}

const userColumns = `id, email, first_name, last_name, password_hash,
	email_verified, email_verification_token, email_verification_expires_at, email_verification_attempts,
	failed_login_attempts, locked_until,
	password_reset_token, password_reset_expires_at, password_reset_attempts,
	is_active, created_at, updated_at, last_login_at`

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row, email)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row, id)
}

func scanUser(row *sql.Row, key string) (*auth.User, error) {
	var (
		u                  auth.User
		verificationToken  sql.NullString
		verificationExpiry sql.NullTime
		lockedUntil        sql.NullTime
		resetToken         sql.NullString
		resetExpiry        sql.NullTime
		lastLogin          sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.EmailVerified, &verificationToken, &verificationExpiry, &u.EmailVerificationAttempts,
		&u.FailedLoginAttempts, &lockedUntil,
		&resetToken, &resetExpiry, &u.PasswordResetAttempts,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", key, auth.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.EmailVerificationToken = nullString(verificationToken)
	u.EmailVerificationExpiresAt = nullTime(verificationExpiry)
	u.LockedUntil = nullTime(lockedUntil)
	u.PasswordResetToken = nullString(resetToken)
	u.PasswordResetExpiresAt = nullTime(resetExpiry)
	u.LastLoginAt = nullTime(lastLogin)
	return &u, nil
}

func (s *Store) InsertUser(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.EmailVerified, ptrString(u.EmailVerificationToken), ptrTime(u.EmailVerificationExpiresAt), u.EmailVerificationAttempts,
		u.FailedLoginAttempts, ptrTime(u.LockedUntil),
		ptrString(u.PasswordResetToken), ptrTime(u.PasswordResetExpiresAt), u.PasswordResetAttempts,
		u.IsActive, u.CreatedAt, u.UpdatedAt, ptrTime(u.LastLoginAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *auth.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET
		   email = ?, first_name = ?, last_name = ?, password_hash = ?,
		   email_verified = ?, email_verification_token = ?, email_verification_expires_at = ?, email_verification_attempts = ?,
		   failed_login_attempts = ?, locked_until = ?,
		   password_reset_token = ?, password_reset_expires_at = ?, password_reset_attempts = ?,
		   is_active = ?, updated_at = ?, last_login_at = ?
		 WHERE id = ?`,
		u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.EmailVerified, ptrString(u.EmailVerificationToken), ptrTime(u.EmailVerificationExpiresAt), u.EmailVerificationAttempts,
		u.FailedLoginAttempts, ptrTime(u.LockedUntil),
		ptrString(u.PasswordResetToken), ptrTime(u.PasswordResetExpiresAt), u.PasswordResetAttempts,
		u.IsActive, u.UpdatedAt, ptrTime(u.LastLoginAt),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL also reports 0 when the row exists but nothing changed;
		// re-check existence before calling it missing.
		var one int
		if err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM users WHERE id = ?`, u.ID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %q: %w", u.ID, auth.ErrNotFound)
		}
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Store) InsertEmailVerification(ctx context.Context, v *auth.EmailVerification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_verifications
		   (id, user_id, email, code, token, expires_at, verified_at, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Email, v.Code, v.Token, v.ExpiresAt, ptrTime(v.VerifiedAt), v.Attempts, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert email verification: %w", err)
	}
	return nil
}

func (s *Store) FindEmailVerification(ctx context.Context, email, code string) (*auth.EmailVerification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, email, code, token, expires_at, verified_at, attempts, created_at
		   FROM email_verifications
		  WHERE email = ? AND UPPER(code) = UPPER(?) AND verified_at IS NULL
		  ORDER BY created_at DESC
		  LIMIT 1`, email, code)

	var (
		v          auth.EmailVerification
		verifiedAt sql.NullTime
	)
	err := row.Scan(&v.ID, &v.UserID, &v.Email, &v.Code, &v.Token, &v.ExpiresAt, &verifiedAt, &v.Attempts, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("verification for %q: %w", email, auth.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan email verification: %w", err)
	}
	v.VerifiedAt = nullTime(verifiedAt)
	return &v, nil
}

func (s *Store) MarkEmailVerificationVerified(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE email_verifications SET verified_at = ? WHERE id = ? AND verified_at IS NULL`,
		at, id)
	if err != nil {
		return fmt.Errorf("mark verification verified: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("verification %q: %w", id, auth.ErrNotFound)
	}
	return nil
}

func (s *Store) IncrementEmailVerificationAttempts(ctx context.Context, email string) (int, error) {
	// Bump and read back in one transaction so concurrent guesses each see
	// a distinct count.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var id string
	var attempts int
	err = tx.QueryRowContext(ctx,
		`SELECT id, attempts FROM email_verifications
		  WHERE email = ? AND verified_at IS NULL
		  ORDER BY created_at DESC
		  LIMIT 1
		  FOR UPDATE`, email).Scan(&id, &attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lock verification: %w", err)
	}

	attempts++
	if _, err := tx.ExecContext(ctx,
		`UPDATE email_verifications SET attempts = ? WHERE id = ?`, attempts, id); err != nil {
		return 0, fmt.Errorf("bump verification attempts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return attempts, nil
}

func (s *Store) InsertPasswordReset(ctx context.Context, r *auth.PasswordReset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO password_resets
		   (id, user_id, email, token, code, expires_at, used_at, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Email, r.Token, r.Code, r.ExpiresAt, ptrTime(r.UsedAt), r.Attempts, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

func (s *Store) FindPasswordReset(ctx context.Context, token string) (*auth.PasswordReset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, email, token, code, expires_at, used_at, attempts, created_at
		   FROM password_resets
		  WHERE token = ? AND used_at IS NULL`, token)
	return scanReset(row, "token")
}

func (s *Store) FindPasswordResetByCode(ctx context.Context, email, code string) (*auth.PasswordReset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, email, token, code, expires_at, used_at, attempts, created_at
		   FROM password_resets
		  WHERE email = ? AND UPPER(code) = UPPER(?) AND used_at IS NULL
		  ORDER BY created_at DESC
		  LIMIT 1`, email, code)
	return scanReset(row, email)
}

func scanReset(row *sql.Row, key string) (*auth.PasswordReset, error) {
	var (
		r      auth.PasswordReset
		usedAt sql.NullTime
	)
	err := row.Scan(&r.ID, &r.UserID, &r.Email, &r.Token, &r.Code, &r.ExpiresAt, &usedAt, &r.Attempts, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("password reset %q: %w", key, auth.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan password reset: %w", err)
	}
	r.UsedAt = nullTime(usedAt)
	return &r, nil
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE password_resets SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		at, id)
	if err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("password reset %q: %w", id, auth.ErrNotFound)
	}
	return nil
}

func (s *Store) IncrementPasswordResetAttempts(ctx context.Context, email string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var id string
	var attempts int
	err = tx.QueryRowContext(ctx,
		`SELECT id, attempts FROM password_resets
		  WHERE email = ? AND used_at IS NULL
		  ORDER BY created_at DESC
		  LIMIT 1
		  FOR UPDATE`, email).Scan(&id, &attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lock password reset: %w", err)
	}

	attempts++
	if _, err := tx.ExecContext(ctx,
		`UPDATE password_resets SET attempts = ? WHERE id = ?`, attempts, id); err != nil {
		return 0, fmt.Errorf("bump reset attempts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return attempts, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func ptrString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func ptrTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
