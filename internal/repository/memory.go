package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pocketmint/pocketmint-api/internal/domain"
)

// In-memory repository variants. They honor the same uniqueness and
// not-found semantics as the postgres implementations and back the service
// unit tests, which must run without external infrastructure.

// memoryUserRepository implements UserRepository in memory
type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMemoryUserRepository creates an in-memory user repository
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if user.Email != nil && existing.Email != nil && *existing.Email == *user.Email {
			return fmt.Errorf("failed to create user: %w", ErrDuplicateEmail)
		}
		if user.PhoneNumber != nil && existing.PhoneNumber != nil && *existing.PhoneNumber == *user.PhoneNumber {
			return fmt.Errorf("failed to create user: %w", ErrDuplicatePhoneNumber)
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email != nil && *user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
}

func (r *memoryUserRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.PhoneNumber != nil && *user.PhoneNumber == phoneNumber {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user with phone number %s not found: %w", phoneNumber, ErrNotFound)
}

func (r *memoryUserRepository) GetByContact(ctx context.Context, value string, method domain.VerificationMethod) (*domain.User, error) {
	if method == domain.VerificationMethodPhone {
		return r.GetByPhoneNumber(ctx, value)
	}
	return r.GetByEmail(ctx, value)
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepository) Update(ctx context.Context, id string, update *UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
	}

	if update.FirstName != nil {
		user.FirstName = update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	if update.AccountType != nil {
		user.AccountType = update.AccountType
	}
	if update.CompanyName != nil {
		user.CompanyName = update.CompanyName
	}
	if update.CompanyWebsite != nil {
		user.CompanyWebsite = update.CompanyWebsite
	}
	if update.CompanyCategory != nil {
		user.CompanyCategory = update.CompanyCategory
	}
	if update.BusinessStructure != nil {
		user.BusinessStructure = update.BusinessStructure
	}
	if update.FinancialGoal != nil {
		user.FinancialGoal = update.FinancialGoal
	}
	if update.PasswordHash != nil {
		user.PasswordHash = update.PasswordHash
	}
	if update.IsVerified != nil {
		user.IsVerified = *update.IsVerified
	}
	if update.IsEmailVerified != nil {
		user.IsEmailVerified = *update.IsEmailVerified
	}
	if update.IsPhoneVerified != nil {
		user.IsPhoneVerified = *update.IsPhoneVerified
	}
	user.UpdatedAt = time.Now()

	return nil
}

// memoryTokenRepository implements TokenRepository in memory
type memoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Token
}

// NewMemoryTokenRepository creates an in-memory token repository
func NewMemoryTokenRepository() TokenRepository {
	return &memoryTokenRepository{tokens: make(map[string]*domain.Token)}
}

func (r *memoryTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tokens {
		if existing.Value == token.Value {
			return fmt.Errorf("token value collides: %w", ErrDuplicateToken)
		}
	}

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *memoryTokenRepository) GetByToken(ctx context.Context, value string, tokenType domain.TokenType) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, token := range r.tokens {
		if token.Value == value && token.Type == tokenType {
			copied := *token
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("token not found: %w", ErrNotFound)
}

func (r *memoryTokenRepository) GetByOTP(ctx context.Context, value string) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, token := range r.tokens {
		if token.Value != value {
			continue
		}
		switch token.Type {
		case domain.TokenTypeInitiateSignupOTP, domain.TokenTypeForgotPasswordOTP, domain.TokenTypeLoginOTP:
			copied := *token
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("otp not found: %w", ErrNotFound)
}

func (r *memoryTokenRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[id]; !ok {
		return fmt.Errorf("token with id %s not found: %w", id, ErrNotFound)
	}
	delete(r.tokens, id)
	return nil
}

func (r *memoryTokenRepository) DeleteByToken(ctx context.Context, value string, tokenType domain.TokenType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, token := range r.tokens {
		if token.Value == value && token.Type == tokenType {
			delete(r.tokens, id)
			return nil
		}
	}
	return fmt.Errorf("token not found: %w", ErrNotFound)
}

func (r *memoryTokenRepository) DeleteByUserAndType(ctx context.Context, userID string, tokenType domain.TokenType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, token := range r.tokens {
		if token.UserID == userID && token.Type == tokenType {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *memoryTokenRepository) DeleteRefreshTokens(ctx context.Context, userID string) error {
	return r.DeleteByUserAndType(ctx, userID, domain.TokenTypeRefresh)
}

func (r *memoryTokenRepository) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, token := range r.tokens {
		if now.After(token.ExpiresAt) {
			delete(r.tokens, id)
		}
	}
	return nil
}

// memoryLinkedAccountRepository implements LinkedAccountRepository in memory
type memoryLinkedAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LinkedAccount
}

// NewMemoryLinkedAccountRepository creates an in-memory linked account repository
func NewMemoryLinkedAccountRepository() LinkedAccountRepository {
	return &memoryLinkedAccountRepository{accounts: make(map[string]*domain.LinkedAccount)}
}

func (r *memoryLinkedAccountRepository) Create(ctx context.Context, account *domain.LinkedAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.UserID == account.UserID && existing.ExternalID == account.ExternalID {
			return fmt.Errorf("linked account already exists: %w", ErrDuplicateLinkedAccount)
		}
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *memoryLinkedAccountRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.LinkedAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []*domain.LinkedAccount
	for _, account := range r.accounts {
		if account.UserID == userID {
			copied := *account
			accounts = append(accounts, &copied)
		}
	}
	return accounts, nil
}
