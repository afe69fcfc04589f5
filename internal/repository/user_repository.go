package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pocketmint/pocketmint-api/internal/domain"
	"github.com/pocketmint/pocketmint-api/pkg/database"
)

const userColumns = `id, first_name, last_name, account_type, company_name, company_website,
		company_category, business_structure, financial_goal, email, phone_number,
		password_hash, verification_method, is_verified, is_email_verified, is_phone_verified,
		created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, phone_number, verification_method, is_verified,
			is_email_verified, is_phone_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	// Generate UUID if not provided
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

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PhoneNumber,
		user.VerificationMethod,
		user.IsVerified,
		user.IsEmailVerified,
		user.IsPhoneVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", uniqueUserViolation(err))
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByColumn(ctx, "email", email)
}

// GetByPhoneNumber retrieves a user by phone number
func (r *userRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error) {
	return r.getByColumn(ctx, "phone_number", phoneNumber)
}

// GetByContact retrieves a user by email or phone number, choosing the unique
// index matching the declared verification method.
func (r *userRepository) GetByContact(ctx context.Context, value string, method domain.VerificationMethod) (*domain.User, error) {
	if method == domain.VerificationMethodPhone {
		return r.GetByPhoneNumber(ctx, value)
	}
	return r.GetByEmail(ctx, value)
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getByColumn(ctx, "id", id)
}

func (r *userRepository) getByColumn(ctx context.Context, column, value string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with %s %s not found: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

// Update merges the non-nil fields of the update into the user record.
func (r *userRepository) Update(ctx context.Context, id string, update *UserUpdate) error {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if update.FirstName != nil {
		add("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		add("last_name", *update.LastName)
	}
	if update.AccountType != nil {
		add("account_type", *update.AccountType)
	}
	if update.CompanyName != nil {
		add("company_name", *update.CompanyName)
	}
	if update.CompanyWebsite != nil {
		add("company_website", *update.CompanyWebsite)
	}
	if update.CompanyCategory != nil {
		add("company_category", *update.CompanyCategory)
	}
	if update.BusinessStructure != nil {
		add("business_structure", *update.BusinessStructure)
	}
	if update.FinancialGoal != nil {
		add("financial_goal", *update.FinancialGoal)
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.IsVerified != nil {
		add("is_verified", *update.IsVerified)
	}
	if update.IsEmailVerified != nil {
		add("is_email_verified", *update.IsEmailVerified)
	}
	if update.IsPhoneVerified != nil {
		add("is_phone_verified", *update.IsPhoneVerified)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", uniqueUserViolation(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var (
		firstName, lastName, accountType              sql.NullString
		companyName, companyWebsite, companyCategory  sql.NullString
		businessStructure, financialGoal              sql.NullString
		email, phoneNumber, passwordHash              sql.NullString
	)

	err := row.Scan(
		&user.ID,
		&firstName,
		&lastName,
		&accountType,
		&companyName,
		&companyWebsite,
		&companyCategory,
		&businessStructure,
		&financialGoal,
		&email,
		&phoneNumber,
		&passwordHash,
		&user.VerificationMethod,
		&user.IsVerified,
		&user.IsEmailVerified,
		&user.IsPhoneVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.FirstName = nullableString(firstName)
	user.LastName = nullableString(lastName)
	if accountType.Valid {
		at := domain.AccountType(accountType.String)
		user.AccountType = &at
	}
	user.CompanyName = nullableString(companyName)
	user.CompanyWebsite = nullableString(companyWebsite)
	user.CompanyCategory = nullableString(companyCategory)
	user.BusinessStructure = nullableString(businessStructure)
	user.FinancialGoal = nullableString(financialGoal)
	user.Email = nullableString(email)
	user.PhoneNumber = nullableString(phoneNumber)
	user.PasswordHash = nullableString(passwordHash)

	return user, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// uniqueUserViolation maps a unique constraint violation to the matching
// sentinel error, keyed on the violated constraint name.
func uniqueUserViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		if strings.Contains(pqErr.Constraint, "phone") {
			return ErrDuplicatePhoneNumber
		}
		return ErrDuplicateEmail
	}
	return err
}
