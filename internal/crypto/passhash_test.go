package crypto

import (
	"bytes"
	"testing"
)

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("p@ssw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("p@ssw0rd")
	if err != nil {
		t.Fatalf("HashPassword(2): %v", err)
	}
	if len(h1) == 0 || len(h2) == 0 {
		t.Fatalf("empty hash")
	}
	if bytes.Equal(h1, h2) {
		t.Fatalf("two hashes of the same password are equal — salt not applied")
	}
	if bytes.Contains(h1, []byte("p@ssw0rd")) {
		t.Fatalf("hash contains the plaintext password")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatalf("VerifyPassword: expected true for correct password")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("VerifyPassword: expected false for wrong password")
	}
	if VerifyPassword("", hash) {
		t.Fatalf("VerifyPassword: expected false for empty password")
	}
	if VerifyPassword("correct horse battery staple", []byte("not-a-hash")) {
		t.Fatalf("VerifyPassword: expected false for malformed hash")
	}
}
