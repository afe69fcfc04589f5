package utils

import (
	"testing"
	"time"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(testSecret, 15*time.Minute, 24*time.Hour)

	token, err := manager.GenerateAccessToken("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("Failed to generate access token: %v", err)
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("Failed to validate access token: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("Expected user ID 'user-123', got %q", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Expected email 'user@example.com', got %q", claims.Email)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(testSecret, 15*time.Minute, 24*time.Hour)

	token, err := manager.GenerateRefreshToken("user-123")
	if err != nil {
		t.Fatalf("Failed to generate refresh token: %v", err)
	}

	userID, err := manager.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("Failed to validate refresh token: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Expected user ID 'user-123', got %q", userID)
	}

	// Refresh tokens are never valid as access tokens
	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("Expected refresh token to be rejected as an access token")
	}
}

func TestAccessTokenRejectedAsRefreshToken(t *testing.T) {
	manager := NewJWTManager(testSecret, 15*time.Minute, 24*time.Hour)

	token, err := manager.GenerateAccessToken("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("Failed to generate access token: %v", err)
	}

	if _, err := manager.ValidateRefreshToken(token); err == nil {
		t.Error("Expected access token to be rejected as a refresh token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	manager := NewJWTManager(testSecret, -time.Minute, -time.Minute)

	token, err := manager.GenerateAccessToken("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("Failed to generate access token: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	manager := NewJWTManager(testSecret, 15*time.Minute, 24*time.Hour)
	other := NewJWTManager("another-secret-key-that-is-32-characters!!", 15*time.Minute, 24*time.Hour)

	token, err := manager.GenerateAccessToken("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("Failed to generate access token: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Error("Expected token signed with a different secret to be rejected")
	}
}
