package service

import (
	"context"

	"github.com/pocketmint/pocketmint-api/internal/domain"
	"github.com/pocketmint/pocketmint-api/internal/dto"
)

// AuthService defines the authentication flows
type AuthService interface {
	InitiateSignupOTP(ctx context.Context, req *dto.InitiateSignupOTPRequest) (string, error)
	VerifyOTP(ctx context.Context, otp string) (string, error)
	CompleteSignup(ctx context.Context, req *dto.CompleteSignupRequest) error
	Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	ResendOTP(ctx context.Context, req *dto.ResendOTPRequest) error
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}
