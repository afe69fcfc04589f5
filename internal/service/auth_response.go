package service

import (
	"context"
	"fmt"

	"github.com/pocketmint/pocketmint-api/internal/domain"
	"github.com/pocketmint/pocketmint-api/internal/dto"
)

// AuthResult contains the credentials minted by login and refresh
type AuthResult struct {
	AccessToken           string
	AccessTokenExpiresIn  int // seconds
	RefreshToken          string
	RefreshTokenExpiresIn int // seconds
	User                  dto.UserInfo
}

// issueSession mints an access token plus a persisted refresh token for the
// user. The refresh token record carries the requesting user agent when known.
func (s *authService) issueSession(ctx context.Context, user *domain.User, userAgent *string) (*AuthResult, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &domain.Token{
		UserID:    user.ID,
		Value:     refreshToken,
		Type:      domain.TokenTypeRefresh,
		ExpiresAt: s.jwt.RefreshTokenExpiry(),
		UserAgent: userAgent,
	}

	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &AuthResult{
		AccessToken:           accessToken,
		AccessTokenExpiresIn:  int(s.jwt.AccessTokenTTL().Seconds()),
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: int(s.jwt.RefreshTokenTTL().Seconds()),
		User:                  userInfo(user),
	}, nil
}

func userInfo(user *domain.User) dto.UserInfo {
	return dto.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
	}
}
