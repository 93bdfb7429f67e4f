package utils

import (
	"strings"
	"testing"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, err := GenerateRoomCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = struct{}{}
	}
	// 50 draws from a 31^6 space should not all collide.
	if len(seen) < 2 {
		t.Error("codes are not random")
	}
}

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 50; i++ {
		pin, err := GeneratePIN()
		if err != nil {
			t.Fatal(err)
		}
		if len(pin) != 4 {
			t.Fatalf("pin %q is not 4 characters", pin)
		}
		for _, r := range pin {
			if r < '0' || r > '9' {
				t.Fatalf("pin %q contains non-digit %q", pin, r)
			}
		}
	}
}

func TestNewPoolSeed(t *testing.T) {
	for i := 0; i < 20; i++ {
		seed, err := NewPoolSeed()
		if err != nil {
			t.Fatal(err)
		}
		if seed < 0 {
			t.Fatalf("seed %d is negative", seed)
		}
	}
}

func TestHashAndVerifyPIN(t *testing.T) {
	hash, err := HashPIN("0427", 4) // minimum cost keeps the test fast
	if err != nil {
		t.Fatal(err)
	}
	if hash == "0427" {
		t.Fatal("hash equals the plain PIN")
	}
	if !VerifyPIN(hash, "0427") {
		t.Error("correct PIN rejected")
	}
	if VerifyPIN(hash, "0428") {
		t.Error("wrong PIN accepted")
	}
	if VerifyPIN("not-a-hash", "0427") {
		t.Error("garbage hash accepted")
	}
}
