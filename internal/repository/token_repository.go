package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pocketmint/pocketmint-api/internal/domain"
	"github.com/pocketmint/pocketmint-api/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create creates a new token in the database
func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	query := `
		INSERT INTO tokens (id, user_id, token, type, expires_at, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	// Generate UUID if not provided
	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Value,
		token.Type,
		token.ExpiresAt,
		token.UserAgent,
		token.CreatedAt,
	)

	if err != nil {
		// Check for unique constraint violation (duplicate token value)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("token value collides: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetByToken retrieves a token by its value and type
func (r *tokenRepository) GetByToken(ctx context.Context, value string, tokenType domain.TokenType) (*domain.Token, error) {
	query := `
		SELECT id, user_id, token, type, expires_at, user_agent, created_at
		FROM tokens
		WHERE token = $1 AND type = $2
	`

	token, err := scanToken(r.db.DB.QueryRowContext(ctx, query, value, tokenType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// GetByOTP retrieves an OTP token by its raw code regardless of which OTP
// type it was minted as. Non-OTP tokens (refresh, signup flow) are never
// matched here.
func (r *tokenRepository) GetByOTP(ctx context.Context, value string) (*domain.Token, error) {
	query := `
		SELECT id, user_id, token, type, expires_at, user_agent, created_at
		FROM tokens
		WHERE token = $1 AND type = ANY($2)
	`

	otpTypes := pq.Array([]string{
		string(domain.TokenTypeInitiateSignupOTP),
		string(domain.TokenTypeForgotPasswordOTP),
		string(domain.TokenTypeLoginOTP),
	})

	token, err := scanToken(r.db.DB.QueryRowContext(ctx, query, value, otpTypes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("otp not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}

	return token, nil
}

// Delete deletes a token by ID
func (r *tokenRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tokens WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("token with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteByToken deletes a token by its value and type
func (r *tokenRepository) DeleteByToken(ctx context.Context, value string, tokenType domain.TokenType) error {
	query := `DELETE FROM tokens WHERE token = $1 AND type = $2`

	result, err := r.db.DB.ExecContext(ctx, query, value, tokenType)
	if err != nil {
		return fmt.Errorf("failed to delete token by value: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("token not found: %w", ErrNotFound)
	}

	return nil
}

// DeleteByUserAndType deletes all tokens of the given type for a user.
// Succeeds even when zero rows matched.
func (r *tokenRepository) DeleteByUserAndType(ctx context.Context, userID string, tokenType domain.TokenType) error {
	query := `DELETE FROM tokens WHERE user_id = $1 AND type = $2`

	_, err := r.db.DB.ExecContext(ctx, query, userID, tokenType)
	if err != nil {
		return fmt.Errorf("failed to delete tokens by user and type: %w", err)
	}

	return nil
}

// DeleteRefreshTokens deletes all refresh tokens for a user
func (r *tokenRepository) DeleteRefreshTokens(ctx context.Context, userID string) error {
	return r.DeleteByUserAndType(ctx, userID, domain.TokenTypeRefresh)
}

// DeleteExpired deletes all expired tokens
func (r *tokenRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM tokens WHERE expires_at < $1`

	_, err := r.db.DB.ExecContext(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return nil
}

func scanToken(row *sql.Row) (*domain.Token, error) {
	token := &domain.Token{}
	var userAgent sql.NullString

	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Value,
		&token.Type,
		&token.ExpiresAt,
		&userAgent,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userAgent.Valid {
		token.UserAgent = &userAgent.String
	}

	return token, nil
}
