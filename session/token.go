package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	sessionIDSize = 16
	secretSize    = 32
	tokenRawSize  = sessionIDSize + secretSize
)

var errMalformedToken = errors.New("malformed session token")

func newSessionID() (string, error) {
	var id [sessionIDSize]byte
	if _, err := rand.Read(id[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(id[:]), nil
}

func newSecret() ([secretSize]byte, error) {
	var secret [secretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

func hashSecret(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	return sum[:]
}

// encodeToken packs sessionID and secret into one opaque bearer string.
func encodeToken(sessionID string, secret [secretSize]byte) (string, error) {
	id, err := base64.RawURLEncoding.DecodeString(sessionID)
	if err != nil || len(id) != sessionIDSize {
		return "", errMalformedToken
	}

	var raw [tokenRawSize]byte
	copy(raw[:sessionIDSize], id)
	copy(raw[sessionIDSize:], secret[:])
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

func decodeToken(token string) (string, [secretSize]byte, error) {
	var secret [secretSize]byte

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", secret, errMalformedToken
	}
	if len(raw) != tokenRawSize {
		return "", secret, errMalformedToken
	}

	id := base64.RawURLEncoding.EncodeToString(raw[:sessionIDSize])
	copy(secret[:], raw[sessionIDSize:])
	return id, secret, nil
}
