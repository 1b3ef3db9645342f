package util

import (
	"testing"
	"time"
)

func TestToken_RoundTrip(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateToken(secret, 42, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("claims.UserID = %d, want 42", claims.UserID)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Error("claims.ExpiresAt should be in the future")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", 1, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken("secret-b", token); err == nil {
		t.Error("ParseToken() with wrong secret error = nil, want error")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("secret", "not.a.token"); err == nil {
		t.Error("ParseToken(garbage) error = nil, want error")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("secret", 1, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken("secret", token); err == nil {
		t.Error("ParseToken(expired) error = nil, want error")
	}
}
