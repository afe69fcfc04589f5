package domain

import "time"

// TokenType classifies a persisted token record.
type TokenType string

const (
	TokenTypeRefresh           TokenType = "refreshToken"
	TokenTypeInitiateSignupOTP TokenType = "initiateSignupOtp"
	TokenTypeForgotPasswordOTP TokenType = "forgotPasswordOtp"
	TokenTypeSignupFlow        TokenType = "signupFlowToken"
	TokenTypeLoginOTP          TokenType = "loginOtp"
)

// Token is a single-use or session credential record. Tokens are only ever
// created and deleted, never mutated: redeeming one deletes it, and creating
// a new exclusive-type token deletes its predecessors first.
type Token struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Value     string    `json:"-" db:"token"`
	Type      TokenType `json:"type" db:"type"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	UserAgent *string   `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token is past its expiry timestamp.
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// TokenClaims represents the claims carried by a signed access token.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}

// IsExpired checks if the claims are past their expiry.
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}
