package auth

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Abc12345!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}
	if !CheckPassword("Abc12345!", hash) {
		t.Fatalf("expected password to verify against its own hash")
	}
	if CheckPassword("WrongPass1!", hash) {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("Abc12345!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("Abc12345!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must never verify")
	}
}
