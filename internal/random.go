package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const tokenPayloadSize = 32

// NewID returns a fresh row identifier.
func NewID() string {
	return uuid.NewString()
}

// NewVerificationCode returns an uppercase alphanumeric code of the given
// length, each character drawn independently from crypto/rand.
func NewVerificationCode(length int) (string, error) {
	if length < 4 || length > 16 {
		return "", errors.New("invalid code length")
	}

	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NewToken returns an opaque bearer token: a random payload joined with a
// time-derived suffix that keeps tokens unique even under a broken entropy
// source. Tokens are lookup keys, never parsed.
func NewToken() (string, error) {
	var payload [tokenPayloadSize]byte
	if _, err := rand.Read(payload[:]); err != nil {
		return "", err
	}
	suffix := strconv.FormatInt(time.Now().UnixNano(), 36)
	return base64.RawURLEncoding.EncodeToString(payload[:]) + suffix, nil
}
