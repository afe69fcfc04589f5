package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pocketmint/pocketmint-api/internal/domain"
)

func TestMemoryTokenRepositoryDeleteExpired(t *testing.T) {
	repo := NewMemoryTokenRepository()
	ctx := context.Background()

	live := &domain.Token{
		UserID:    "user-1",
		Value:     "111111",
		Type:      domain.TokenTypeInitiateSignupOTP,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	expired := &domain.Token{
		UserID:    "user-1",
		Value:     "222222",
		Type:      domain.TokenTypeForgotPasswordOTP,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := repo.Create(ctx, live); err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}
	if err := repo.Create(ctx, expired); err != nil {
		t.Fatalf("Failed to create token: %v", err)
	}

	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("Failed to delete expired tokens: %v", err)
	}

	if _, err := repo.GetByToken(ctx, "111111", domain.TokenTypeInitiateSignupOTP); err != nil {
		t.Errorf("Expected live token to survive the sweep, got %v", err)
	}
	if _, err := repo.GetByToken(ctx, "222222", domain.TokenTypeForgotPasswordOTP); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected expired token to be swept, got %v", err)
	}
}
