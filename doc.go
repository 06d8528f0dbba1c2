// Package auth is an embeddable account-security core: registration, email
// verification, login with brute-force lockout, password reset, and session
// bootstrap for the icsboltz equipment-loan platform.
//
// The engine owns no durable state of its own. Callers supply a record
// [Store] (relational in production, see store/mysql; in-memory for tests,
// see store/memory), a Redis client for the session primitive, and an
// optional notification collaborator that receives verification codes and
// reset tokens out of band.
//
// Construction follows the builder pattern:
//
//	engine, err := auth.New().
//		WithConfig(cfg).
//		WithStore(st).
//		WithRedis(rdb).
//		WithNotifier(nt).
//		Build()
//
// Every public flow returns a [Result] envelope instead of raising errors for
// expected failures. The envelope's Err field carries a package sentinel
// (ErrInvalidCredentials, ErrAccountLocked, ...) for programmatic branching;
// Message is safe to show to end users. Unknown-email and wrong-password
// login failures are deliberately indistinguishable, and ForgotPassword
// answers identically whether or not the account exists.
package auth
