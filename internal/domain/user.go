package domain

import "time"

// VerificationMethod is the contact channel a user chose at signup.
type VerificationMethod string

const (
	VerificationMethodEmail VerificationMethod = "EMAIL"
	VerificationMethodPhone VerificationMethod = "PHONE_NUMBER"
)

// AccountType distinguishes personal and business accounts.
type AccountType string

const (
	AccountTypeBusiness AccountType = "BUSINESS"
	AccountTypePersonal AccountType = "PERSONAL"
)

// User represents a user in the system. Accounts are created in an
// incomplete state by the initiate-signup flow (contact identity only) and
// filled in by complete-signup, so most profile fields are nullable.
type User struct {
	ID                 string             `json:"id" db:"id"`
	FirstName          *string            `json:"first_name" db:"first_name"`
	LastName           *string            `json:"last_name" db:"last_name"`
	AccountType        *AccountType       `json:"account_type" db:"account_type"`
	CompanyName        *string            `json:"company_name" db:"company_name"`
	CompanyWebsite     *string            `json:"company_website" db:"company_website"`
	CompanyCategory    *string            `json:"company_category" db:"company_category"`
	BusinessStructure  *string            `json:"business_structure" db:"business_structure"`
	FinancialGoal      *string            `json:"financial_goal" db:"financial_goal"`
	Email              *string            `json:"email" db:"email"`
	PhoneNumber        *string            `json:"phone_number" db:"phone_number"`
	PasswordHash       *string            `json:"-" db:"password_hash"`
	VerificationMethod VerificationMethod `json:"-" db:"verification_method"`
	IsVerified         bool               `json:"is_verified" db:"is_verified"`
	IsEmailVerified    bool               `json:"is_email_verified" db:"is_email_verified"`
	IsPhoneVerified    bool               `json:"is_phone_verified" db:"is_phone_verified"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// Contact returns the address notifications for this user go to,
// matching the stored verification method.
func (u *User) Contact() string {
	if u.VerificationMethod == VerificationMethodPhone {
		if u.PhoneNumber != nil {
			return *u.PhoneNumber
		}
		return ""
	}
	if u.Email != nil {
		return *u.Email
	}
	return ""
}

// LinkedAccount references an account created at the external banking-data
// aggregator on the user's behalf during signup.
type LinkedAccount struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	ExternalID string    `json:"external_id" db:"external_id"`
	Email      *string   `json:"email" db:"email"`
	IsDisabled bool      `json:"is_disabled" db:"is_disabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
