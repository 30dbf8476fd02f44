package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestTokenPairRoundTrip проверяет выпуск и разбор access-токена.
func TestTokenPairRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", "daily-budget", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	pair, err := manager.NewTokenPair(userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pair.RefreshToken == "" || len(pair.RefreshToken) != 64 {
		t.Fatalf("expected 64-char opaque refresh token, got %q", pair.RefreshToken)
	}

	claims, err := manager.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}
}

// TestParseAccessTokenWrongSecret проверяет отказ на чужой подписи.
func TestParseAccessTokenWrongSecret(t *testing.T) {
	manager := NewTokenManager("test-secret", "daily-budget", 15*time.Minute, 24*time.Hour)
	other := NewTokenManager("other-secret", "daily-budget", 15*time.Minute, 24*time.Hour)

	pair, err := manager.NewTokenPair(uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := other.ParseAccessToken(pair.AccessToken); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

// TestHashTokenDeterministic проверяет стабильность хэша refresh-токена.
func TestHashTokenDeterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("expected deterministic hash")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("expected different hashes for different tokens")
	}
}
