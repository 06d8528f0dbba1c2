package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	hash, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash must not equal the input")
	}

	ok, err := h.Verify("correct-horse", hash)
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("wrong-horse", hash)
	if err != nil {
		t.Fatalf("mismatch must not error: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := h.Verify("anything", "not-a-bcrypt-hash")
	if ok {
		t.Fatal("malformed hash verified")
	}
	if !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("want ErrInvalidHash, got %v", err)
	}
}

func TestNewHasherCostPolicy(t *testing.T) {
	h, err := NewHasher(0)
	if err != nil {
		t.Fatal(err)
	}
	if h.Cost() != DefaultCost {
		t.Fatalf("cost 0 should select DefaultCost, got %d", h.Cost())
	}
	if _, err := NewHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("out-of-range cost accepted")
	}
}
