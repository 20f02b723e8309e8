package util

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "MyPassword123"

	hashed, err := HashPassword(password, 4) // min cost keeps the test fast
	if err != nil {
		t.Fatalf("HashPassword error = %v", err)
	}
	if !strings.HasPrefix(hashed, "$2") {
		t.Errorf("hash = %q, want bcrypt format", hashed)
	}

	if _, err := HashPassword("", 4); err == nil {
		t.Error("empty password should return error")
	}

	// same password, different salt
	hashed2, _ := HashPassword(password, 4)
	if hashed == hashed2 {
		t.Error("same password should produce different hashes")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "TestPass456"
	hashed, _ := HashPassword(password, 4)

	if !CheckPassword(password, hashed) {
		t.Error("correct password rejected")
	}
	if CheckPassword("WrongPass", hashed) {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", hashed) {
		t.Error("empty password accepted")
	}
	if CheckPassword(password, "") {
		t.Error("empty hash accepted")
	}
	if CheckPassword(password, "invalid-format") {
		t.Error("invalid hash format accepted")
	}
}

func TestHashPassword_BadCostFallsBack(t *testing.T) {
	hashed, err := HashPassword("SomePass789", 99)
	if err != nil {
		t.Fatalf("HashPassword error = %v", err)
	}
	if !CheckPassword("SomePass789", hashed) {
		t.Error("hash with fallback cost does not verify")
	}
}
