// Package password wraps bcrypt hashing behind a small, fixed-policy API.
// The compare primitive is the library's own constant-time check; a mismatch
// is a normal outcome, only a malformed stored hash is an error.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the fixed work factor used across the platform.
const DefaultCost = 12

// ErrInvalidHash signals a stored hash that bcrypt cannot parse. It points
// at data corruption or a migration bug, never at user input.
var ErrInvalidHash = errors.New("malformed password hash")

// Hasher hashes and verifies passwords at a fixed cost.
type Hasher struct {
	cost int
}

// NewHasher validates the cost and returns a ready hasher. Cost 0 selects
// DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost returns the active work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt hash of plain. The only failure modes are inputs
// longer than bcrypt's 72-byte limit and entropy exhaustion.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares plain against a stored hash. A mismatch returns
// (false, nil); only an unparseable hash returns an error, wrapped in
// [ErrInvalidHash].
func (h *Hasher) Verify(plain, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}
