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

// linkedAccountRepository implements LinkedAccountRepository interface
type linkedAccountRepository struct {
	db *database.Postgres
}

// NewLinkedAccountRepository creates a new linked account repository
func NewLinkedAccountRepository(db *database.Postgres) LinkedAccountRepository {
	return &linkedAccountRepository{db: db}
}

// Create creates a new linked aggregator account reference
func (r *linkedAccountRepository) Create(ctx context.Context, account *domain.LinkedAccount) error {
	query := `
		INSERT INTO linked_accounts (id, user_id, external_id, email, is_disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// Generate UUID if not provided
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		account.ID,
		account.UserID,
		account.ExternalID,
		account.Email,
		account.IsDisabled,
		account.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("linked account already exists: %w", ErrDuplicateLinkedAccount)
		}
		return fmt.Errorf("failed to create linked account: %w", err)
	}

	return nil
}

// GetByUserID retrieves all linked accounts for a user
func (r *linkedAccountRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.LinkedAccount, error) {
	query := `
		SELECT id, user_id, external_id, email, is_disabled, created_at
		FROM linked_accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked accounts by user id: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.LinkedAccount
	for rows.Next() {
		account := &domain.LinkedAccount{}
		var email sql.NullString

		err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.ExternalID,
			&email,
			&account.IsDisabled,
			&account.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan linked account: %w", err)
		}

		if email.Valid {
			account.Email = &email.String
		}

		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate linked accounts: %w", err)
	}

	return accounts, nil
}
