package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken("test-secret", userID, "HR", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	parsedID, role, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if parsedID != userID {
		t.Fatalf("expected user %s, got %s", userID, parsedID)
	}
	if role != "HR" {
		t.Fatalf("expected role HR, got %s", role)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", uuid.New(), "EMPLOYEE", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("test-secret", uuid.New(), "EMPLOYEE", -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, _, err := ParseToken("test-secret", token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}
