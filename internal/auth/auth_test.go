package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateJWT(secret, userID, "alice@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email = %s, want alice@example.com", claims.Email)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret-a", uuid.New(), "alice@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseJWT("secret-b", token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

// Non-positive expirations fall back to 24h instead of minting
// already-expired tokens.
func TestJWTExpirationFallback(t *testing.T) {
	token, err := GenerateJWT("secret", uuid.New(), "alice@example.com", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatalf("fallback-expiry token rejected: %v", err)
	}
	if time.Until(claims.ExpiresAt.Time) < 23*time.Hour {
		t.Errorf("expected ~24h fallback expiry, got %s", time.Until(claims.ExpiresAt.Time))
	}
}

func TestJWTGarbageToken(t *testing.T) {
	if _, err := ParseJWT("secret", "not-a-token"); err == nil {
		t.Error("garbage token was accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", 4) // min cost keeps the test fast
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}
