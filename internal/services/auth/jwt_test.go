package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.GenerateToken("user-1", "a@b.co")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("user id = %q, want user-1", claims.UserID)
	}
	if claims.Email != "a@b.co" {
		t.Fatalf("email = %q, want a@b.co", claims.Email)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateToken("user-1", "a@b.co")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = NewManager("secret-b", time.Hour).ParseToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	token, err := m.GenerateToken("user-1", "a@b.co")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Move the verifier's clock past expiry.
	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := m.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
