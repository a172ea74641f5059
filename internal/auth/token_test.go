package auth

import (
	"strings"
	"testing"
)

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken() error = %v", err)
	}
	if len(token) != resetTokenLength {
		t.Errorf("token length = %d, want %d", len(token), resetTokenLength)
	}
	for _, c := range token {
		if !strings.ContainsRune(resetTokenAlphabet, c) {
			t.Errorf("token contains character %q outside the alphabet", c)
		}
	}
}

func TestGenerateResetTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateResetToken()
		if err != nil {
			t.Fatalf("GenerateResetToken() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}
