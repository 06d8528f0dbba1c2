package internal

import (
	"strings"
	"testing"
)

func TestNewVerificationCodeShape(t *testing.T) {
	for _, length := range []int{4, 6, 16} {
		code, err := NewVerificationCode(length)
		if err != nil {
			t.Fatalf("length %d: %v", length, err)
		}
		if len(code) != length {
			t.Fatalf("length %d: got %q", length, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}

func TestNewVerificationCodeBounds(t *testing.T) {
	for _, length := range []int{0, 3, 17} {
		if _, err := NewVerificationCode(length); err == nil {
			t.Fatalf("length %d should be rejected", length)
		}
	}
}

func TestNewTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewToken()
		if err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if token == "" {
			t.Fatal("empty token")
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestNewIDIsUnique(t *testing.T) {
	if NewID() == NewID() {
		t.Fatal("ids must differ")
	}
}
