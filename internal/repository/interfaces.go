package repository

import (
	"context"

	"github.com/pocketmint/pocketmint-api/internal/domain"
)

// UserUpdate carries a partial set of user fields to merge into an existing
// record. Nil fields are left untouched.
type UserUpdate struct {
	FirstName         *string
	LastName          *string
	AccountType       *domain.AccountType
	CompanyName       *string
	CompanyWebsite    *string
	CompanyCategory   *string
	BusinessStructure *string
	FinancialGoal     *string
	PasswordHash      *string
	IsVerified        *bool
	IsEmailVerified   *bool
	IsPhoneVerified   *bool
}

// UserRepository defines methods for user operations. Lookups return
// ErrNotFound rather than failing when no record matches; callers decide
// whether absence is an error.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error)
	GetByContact(ctx context.Context, value string, method domain.VerificationMethod) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, update *UserUpdate) error
}

// TokenRepository defines methods for token operations. No business
// validation happens here; expiry and exclusivity decisions belong to the
// callers.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	GetByToken(ctx context.Context, value string, tokenType domain.TokenType) (*domain.Token, error)
	GetByOTP(ctx context.Context, value string) (*domain.Token, error)
	Delete(ctx context.Context, id string) error
	DeleteByToken(ctx context.Context, value string, tokenType domain.TokenType) error
	DeleteByUserAndType(ctx context.Context, userID string, tokenType domain.TokenType) error
	DeleteRefreshTokens(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}

// LinkedAccountRepository defines methods for external aggregator account references
type LinkedAccountRepository interface {
	Create(ctx context.Context, account *domain.LinkedAccount) error
	GetByUserID(ctx context.Context, userID string) ([]*domain.LinkedAccount, error)
}
